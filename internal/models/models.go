// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

// Package models defines the core entities stored in the document store and
// the wire types shared across handlers.
package models

import "time"

// Role identifies what a user can do on the platform.
type Role string

// User roles.
const (
	RoleLearner    Role = "learner"
	RoleInstructor Role = "instructor"
)

// Difficulty is the declared difficulty level of a video.
type Difficulty string

// Video difficulty levels.
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ValidDifficulty reports whether d is one of the known difficulty levels.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// User is a platform account. Watch progress, bookmarks, and watch history
// are stored as individually keyed records (see internal/store), not embedded
// here, so that concurrent progress updates for different videos never race
// on a shared document.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullname"`
	Avatar       string    `json:"avatar,omitempty"`     // opaque media-store URL
	CoverImage   string    `json:"coverImage,omitempty"` // opaque media-store URL
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Video is a catalog entry. Duration is kept as the display string supplied
// at upload time ("SS", "MM:SS" or "HH:MM:SS"); canonical seconds are derived
// on demand by internal/duration.
type Video struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	VideoFile   string     `json:"videoFile"` // opaque media-store URL
	Thumbnail   string     `json:"thumbnail"` // opaque media-store URL
	Category    string     `json:"category"`
	Difficulty  Difficulty `json:"difficulty"`
	Tags        []string   `json:"tags"`
	Duration    string     `json:"duration"`
	Views       int64      `json:"views"`
	IsPublished bool       `json:"isPublished"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ProgressEntry records one user's completion percentage for one video.
// Seq preserves insertion order across the user's entries; it is assigned
// once when the entry is first created and never changes.
type ProgressEntry struct {
	VideoID   string    `json:"videoId"`
	Percent   float64   `json:"progress"`
	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Quiz is the question bank attached to a single video.
type Quiz struct {
	ID        string     `json:"id"`
	VideoID   string     `json:"videoId"`
	Questions []Question `json:"questions"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Question is one quiz question with its ordered options.
// Exactly one option carries IsCorrect; this is enforced at authoring time
// only, never re-validated during grading.
type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Options []Option `json:"options"`
}

// Option is a selectable answer for a question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// SubmittedAnswer pairs a question with the option a learner selected,
// with correctness resolved at submission time.
type SubmittedAnswer struct {
	QuestionID string `json:"question"`
	OptionID   string `json:"selectedOption"`
	IsCorrect  bool   `json:"isCorrect"`
}

// QuizAttempt is the immutable record of one quiz submission. It owns a
// frozen copy of the answer evaluation, independent of later changes to the
// quiz it was graded against.
type QuizAttempt struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId"`
	VideoID    string            `json:"videoId"`
	Answers    []SubmittedAnswer `json:"submittedAnswers"`
	Score      int               `json:"score"`
	Percentage float64           `json:"totalPercentage"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// LikeTargetType discriminates what a like points at.
type LikeTargetType string

// Like target types.
const (
	LikeTargetVideo   LikeTargetType = "video"
	LikeTargetComment LikeTargetType = "comment"
	LikeTargetPost    LikeTargetType = "post"
)

// ValidLikeTarget reports whether t is a known like target type.
func ValidLikeTarget(t LikeTargetType) bool {
	switch t {
	case LikeTargetVideo, LikeTargetComment, LikeTargetPost:
		return true
	}
	return false
}

// Like associates a user with exactly one target (video, comment, or post).
// OwnerID is the id of the user who owns the liked content; channel rollups
// count likes by this field. Unique per (LikedBy, TargetType, TargetID).
type Like struct {
	ID         string         `json:"id"`
	LikedBy    string         `json:"likedBy"`
	TargetType LikeTargetType `json:"targetType"`
	TargetID   string         `json:"targetId"`
	OwnerID    string         `json:"ownerId"`
	CreatedAt  time.Time      `json:"createdAt"`
}

// Subscription links a subscriber to a channel (another user).
// Unique per (SubscriberID, ChannelID).
type Subscription struct {
	SubscriberID string    `json:"subscriberId"`
	ChannelID    string    `json:"channelId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Post is a simple content entity owned by a user; the channel analytics
// aggregator consumes it only as a counter.
type Post struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment is a user comment on a video.
type Comment struct {
	ID        string    `json:"id"`
	VideoID   string    `json:"videoId"`
	OwnerID   string    `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
