// Coursecast - Video Learning Platform Backend
// Copyright 2026 Coursecast Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/coursecast/coursecast

package api

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/coursecast/coursecast/internal/auth"
	"github.com/coursecast/coursecast/internal/logging"
	"github.com/coursecast/coursecast/internal/models"
)

// maxUploadBytes bounds multipart video uploads (2 GiB).
const maxUploadBytes = 2 << 30

type createVideoRequest struct {
	Title       string   `json:"title" validate:"required,max=256"`
	Description string   `json:"description"`
	VideoFile   string   `json:"videoFile" validate:"required,url"`
	Thumbnail   string   `json:"thumbnail" validate:"omitempty,url"`
	Category    string   `json:"category" validate:"required"`
	Difficulty  string   `json:"difficulty" validate:"required,difficulty"`
	Tags        []string `json:"tags"`
	Duration    string   `json:"duration" validate:"required"`
	IsPublished bool     `json:"isPublished"`
}

// CreateVideo adds a catalog entry. Multipart bodies carry the raw files,
// which are pushed to the media store; JSON bodies reference already-uploaded
// URLs. Instructors only.
func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.createVideoMultipart(w, r)
		return
	}

	var req createVideoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}
	h.persistVideo(w, r, &req)
}

// createVideoMultipart uploads the form's files to the media store and then
// persists the catalog entry with the returned URLs.
func (h *Handler) createVideoMultipart(w http.ResponseWriter, r *http.Request) {
	if h.media == nil {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT",
			"direct uploads are not configured; supply videoFile and thumbnail URLs as JSON", nil)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed multipart body", nil)
		return
	}

	req := createVideoRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Difficulty:  r.FormValue("difficulty"),
		Duration:    r.FormValue("duration"),
		IsPublished: r.FormValue("isPublished") == "true",
	}
	if tags := r.FormValue("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				req.Tags = append(req.Tags, t)
			}
		}
	}

	videoURL, ok := h.uploadFormFile(w, r, "videoFile")
	if !ok {
		return
	}
	if videoURL == "" {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "videoFile is required", nil)
		return
	}
	req.VideoFile = videoURL

	thumbURL, ok := h.uploadFormFile(w, r, "thumbnail")
	if !ok {
		return
	}
	req.Thumbnail = thumbURL

	if !validateRequest(w, &req) {
		return
	}
	h.persistVideo(w, r, &req)
}

// uploadFormFile pushes one multipart file field to the media store. A missing
// field returns ("", true) so optional files fall through; upload failures
// write the error response and return false.
func (h *Handler) uploadFormFile(w http.ResponseWriter, r *http.Request, field string) (string, bool) {
	file, header, err := r.FormFile(field)
	if err == http.ErrMissingFile {
		return "", true
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_ARGUMENT", "malformed multipart body", nil)
		return "", false
	}
	defer func(f multipart.File) {
		if cerr := f.Close(); cerr != nil {
			logging.Warn().Err(cerr).Str("field", field).Msg("failed to close upload stream")
		}
	}(file)

	url, err := h.media.Upload(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		respondError(w, http.StatusBadGateway, "MEDIA_UNAVAILABLE", "media store upload failed", err)
		return "", false
	}
	return url, true
}

func (h *Handler) persistVideo(w http.ResponseWriter, r *http.Request, req *createVideoRequest) {
	claims := auth.ClaimsFromContext(r.Context())
	video := &models.Video{
		ID:          uuid.NewString(),
		OwnerID:     claims.UserID,
		Title:       req.Title,
		Description: req.Description,
		VideoFile:   req.VideoFile,
		Thumbnail:   req.Thumbnail,
		Category:    req.Category,
		Difficulty:  models.Difficulty(req.Difficulty),
		Tags:        req.Tags,
		Duration:    req.Duration,
		IsPublished: req.IsPublished,
	}
	if err := h.store.CreateVideo(r.Context(), video); err != nil {
		respondStoreError(w, err, "video not found")
		return
	}
	logging.Ctx(r.Context()).Info().Str("video_id", video.ID).Str("owner_id", video.OwnerID).Msg("video created")
	respondSuccess(w, http.StatusCreated, video)
}

// GetVideo returns a single video and counts the view. Rapid re-fetches by
// the same user within the dedup window count once.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	claims := auth.ClaimsFromContext(r.Context())
	if !h.views.Seen(claims.UserID + ":" + id) {
		if err := h.store.IncrementViews(r.Context(), id); err != nil {
			respondStoreError(w, err, "video not found")
			return
		}
	}
	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "video not found")
		return
	}
	respondSuccess(w, http.StatusOK, video)
}

// ListVideos returns the published catalog.
func (h *Handler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.ListPublishedVideos(r.Context())
	if err != nil {
		respondStoreError(w, err, "videos not found")
		return
	}
	if videos == nil {
		videos = []models.Video{}
	}
	respondSuccess(w, http.StatusOK, videos)
}

type updateVideoRequest struct {
	Title       *string  `json:"title" validate:"omitempty,max=256"`
	Description *string  `json:"description"`
	Thumbnail   *string  `json:"thumbnail" validate:"omitempty,url"`
	Category    *string  `json:"category"`
	Difficulty  *string  `json:"difficulty" validate:"omitempty,difficulty"`
	Tags        []string `json:"tags"`
	IsPublished *bool    `json:"isPublished"`
}

// UpdateVideo applies a partial update. Only the owner may modify a video.
func (h *Handler) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "video not found")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if video.OwnerID != claims.UserID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "only the video owner can modify it", nil)
		return
	}

	var req updateVideoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !validateRequest(w, &req) {
		return
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.Thumbnail != nil {
		video.Thumbnail = *req.Thumbnail
	}
	if req.Category != nil {
		video.Category = *req.Category
	}
	if req.Difficulty != nil {
		video.Difficulty = models.Difficulty(*req.Difficulty)
	}
	if req.Tags != nil {
		video.Tags = req.Tags
	}
	if req.IsPublished != nil {
		video.IsPublished = *req.IsPublished
	}

	if err := h.store.UpdateVideo(r.Context(), video); err != nil {
		respondStoreError(w, err, "video not found")
		return
	}
	respondSuccess(w, http.StatusOK, video)
}

// DeleteVideo removes a video. Only the owner may delete it. Media blobs are
// removed best-effort; a media-store failure never blocks the catalog delete.
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	video, err := h.store.GetVideo(r.Context(), id)
	if err != nil {
		respondStoreError(w, err, "video not found")
		return
	}

	claims := auth.ClaimsFromContext(r.Context())
	if video.OwnerID != claims.UserID {
		respondError(w, http.StatusForbidden, "FORBIDDEN", "only the video owner can delete it", nil)
		return
	}

	if err := h.store.DeleteVideo(r.Context(), id); err != nil {
		respondStoreError(w, err, "video not found")
		return
	}

	if h.media != nil {
		for _, blob := range []string{video.VideoFile, video.Thumbnail} {
			if blob == "" {
				continue
			}
			if err := h.media.Delete(r.Context(), blob); err != nil {
				logging.Ctx(r.Context()).Warn().Err(err).Str("blob", blob).Msg("orphaned media blob")
			}
		}
	}
	respondSuccess(w, http.StatusOK, map[string]string{"id": id})
}
