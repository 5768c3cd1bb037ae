// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/models"
)

// AddBookmark bookmarks a video for the caller. Bookmarking twice returns
// 409.
func (h *Handler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	if _, err := h.store.GetVideo(r.Context(), videoID); err != nil {
		respondStoreError(w, err, "video not found")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if err := h.store.AddBookmark(r.Context(), claims.UserID, videoID); err != nil {
		respondStoreError(w, err, "video not found")
		return
	}
	respondSuccess(w, http.StatusCreated, map[string]string{"videoId": videoID})
}

// RemoveBookmark removes a bookmark.
func (h *Handler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "videoID")
	claims := auth.ClaimsFromContext(r.Context())
	if err := h.store.RemoveBookmark(r.Context(), claims.UserID, videoID); err != nil {
		respondStoreError(w, err, "bookmark not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"videoId": videoID})
}

// likeOwner resolves the owner of the liked content so channel rollups can
// attribute the like.
func (h *Handler) likeOwner(r *http.Request, targetType models.LikeTargetType, targetID string) (string, error) {
	switch targetType {
	case models.LikeTargetVideo:
		video, err := h.store.GetVideo(r.Context(), targetID)
		if err != nil {
			return "", err
		}
		return video.OwnerID, nil
	case models.LikeTargetPost:
		post, err := h.store.GetPost(r.Context(), targetID)
		if err != nil {
			return "", err
		}
		return post.OwnerID, nil
	default:
		comment, err := h.store.GetComment(r.Context(), targetID)
		if err != nil {
			return "", err
		}
		return comment.OwnerID, nil
	}
}

// CreateLike likes a video, comment, or post. A second like on the same
// target returns 409.
func (h *Handler) CreateLike(w http.ResponseWriter, r *http.Request) {
	targetType := models.LikeTargetType(chi.URLParam(r, "targetType"))
	targetID := chi.URLParam(r, "targetID")
	if !models.ValidLikeTarget(targetType) {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "unknown like target type", nil)
		return
	}

	ownerID, err := h.likeOwner(r, targetType, targetID)
	if err != nil {
		respondStoreError(w, err, "like target not found")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	like := &models.Like{
		ID:         uuid.NewString(),
		LikedBy:    claims.UserID,
		TargetType: targetType,
		TargetID:   targetID,
		OwnerID:    ownerID,
	}
	if err := h.store.CreateLike(r.Context(), like); err != nil {
		respondStoreError(w, err, "like target not found")
		return
	}
	respondSuccess(w, http.StatusCreated, like)
}

// DeleteLike removes the caller's like on a target.
func (h *Handler) DeleteLike(w http.ResponseWriter, r *http.Request) {
	targetType := models.LikeTargetType(chi.URLParam(r, "targetType"))
	targetID := chi.URLParam(r, "targetID")
	if !models.ValidLikeTarget(targetType) {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "unknown like target type", nil)
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if err := h.store.DeleteLike(r.Context(), claims.UserID, targetType, targetID); err != nil {
		respondStoreError(w, err, "like not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"targetId": targetID})
}

// Subscribe subscribes the caller to a channel. Self-subscription is
// rejected; subscribing twice returns 409.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	claims := auth.ClaimsFromContext(r.Context())
	if channelID == claims.UserID {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "cannot subscribe to your own channel", nil)
		return
	}
	if ok, err := h.store.UserExists(r.Context(), channelID); err != nil {
		respondStoreError(w, err, "channel not found")
		return
	} else if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "channel not found", nil)
		return
	}

	if err := h.store.Subscribe(r.Context(), claims.UserID, channelID); err != nil {
		respondStoreError(w, err, "channel not found")
		return
	}
	respondSuccess(w, http.StatusCreated, map[string]string{"channelId": channelID})
}

// Unsubscribe removes the caller's subscription to a channel.
func (h *Handler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	claims := auth.ClaimsFromContext(r.Context())
	if err := h.store.Unsubscribe(r.Context(), claims.UserID, channelID); err != nil {
		respondStoreError(w, err, "subscription not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"channelId": channelID})
}

type postRequest struct {
	Content string `json:"content" validate:"required,max=4096"`
}

// CreatePost publishes a channel post by the caller.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	post := &models.Post{
		ID:      uuid.NewString(),
		OwnerID: claims.UserID,
		Content: req.Content,
	}
	if err := h.store.CreatePost(r.Context(), post); err != nil {
		respondStoreError(w, err, "post not found")
		return
	}
	respondSuccess(w, http.StatusCreated, post)
}

// ListPosts returns the caller's posts, newest first.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	posts, err := h.store.ListPostsByOwner(r.Context(), claims.UserID)
	if err != nil {
		respondStoreError(w, err, "user not found")
		return
	}
	respondSuccess(w, http.StatusOK, posts)
}

// UpdatePost edits a post's content. Only the owner may edit.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "post not found")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if post.OwnerID != claims.UserID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "only the post owner can modify it", nil)
		return
	}

	var req postRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	post.Content = req.Content
	if err := h.store.UpdatePost(r.Context(), post); err != nil {
		respondStoreError(w, err, "post not found")
		return
	}
	respondSuccess(w, http.StatusOK, post)
}

// DeletePost removes a post. Only the owner may delete.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.store.GetPost(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "post not found")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if post.OwnerID != claims.UserID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "only the post owner can delete it", nil)
		return
	}

	if err := h.store.DeletePost(r.Context(), id); err != nil {
		respondStoreError(w, err, "post not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"id": id})
}

type commentRequest struct {
	Content string `json:"content" validate:"required,max=2048"`
}

// CreateComment adds a comment to a video.
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	if _, err := h.store.GetVideo(r.Context(), videoID); err != nil {
		respondStoreError(w, err, "video not found")
		return
	}

	var req commentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	comment := &models.Comment{
		ID:      uuid.NewString(),
		VideoID: videoID,
		OwnerID: claims.UserID,
		Content: req.Content,
	}
	if err := h.store.CreateComment(r.Context(), comment); err != nil {
		respondStoreError(w, err, "video not found")
		return
	}
	respondSuccess(w, http.StatusCreated, comment)
}

// ListComments returns a video's comments, oldest first.
func (h *Handler) ListComments(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "id")
	comments, err := h.store.ListCommentsByVideo(r.Context(), videoID)
	if err != nil {
		respondStoreError(w, err, "video not found")
		return
	}
	respondSuccess(w, http.StatusOK, comments)
}

// DeleteComment removes a comment. The comment owner and the video owner may
// both delete it.
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	commentID := chi.URLParam(r, "commentID")
	comment, err := h.store.GetComment(r.Context(), commentID)
	if err != nil {
		respondStoreError(w, err, "comment not found")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if comment.OwnerID != claims.UserID {
		video, err := h.store.GetVideo(r.Context(), comment.VideoID)
		if err != nil || video.OwnerID != claims.UserID {
			respondError(w, http.StatusForbidden, "FORBIDDEN", "not allowed to delete this comment", nil)
			return
		}
	}

	if err := h.store.DeleteComment(r.Context(), commentID); err != nil {
		respondStoreError(w, err, "comment not found")
		return
	}
	respondSuccess(w, http.StatusOK, map[string]string{"id": commentID})
}
