package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/services"
)

type TranscriptionHandler struct {
	log           *logger.Logger
	transcribeSvc services.TranscriptionService
}

func NewTranscriptionHandler(log *logger.Logger, transcribeSvc services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{
		log:           log.With("handler", "TranscriptionHandler"),
		transcribeSvc: transcribeSvc,
	}
}

type transcribeRequest struct {
	VideoIDs []string `json:"video_ids"`
	Language string   `json:"language"`
}

// POST /api/videos/transcribe
// Transcribe a batch of already-downloaded videos. Always 200; per-video
// outcomes in body.
func (h *TranscriptionHandler) TranscribeVideos(c *gin.Context) {
	var req transcribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if len(req.VideoIDs) == 0 {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Errorf("video_ids must be a non-empty array"))
		return
	}
	results := h.transcribeSvc.TranscribeBatch(c.Request.Context(), req.VideoIDs, req.Language)
	var successful, notFound, noAudio, failed int
	for _, r := range results {
		switch r.Status {
		case services.StatusSuccess:
			successful++
		case services.StatusNotFound:
			notFound++
		case services.StatusNoAudio:
			noAudio++
		default:
			failed++
		}
	}
	RespondOK(c, gin.H{
		"results":    results,
		"total":      len(results),
		"successful": successful,
		"not_found":  notFound,
		"no_audio":   noAudio,
		"failed":     failed,
	})
}

// GET /api/transcriptions/video/:video_id
// All transcriptions for one external video id, newest first.
func (h *TranscriptionHandler) GetByVideo(c *gin.Context) {
	videoID := c.Param("video_id")
	items, err := h.transcribeSvc.ListByVideo(c.Request.Context(), videoID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"video_id": videoID, "transcriptions": items, "count": len(items)})
}

// GET /api/transcriptions?video_id=&skip=&limit=
func (h *TranscriptionHandler) ListTranscriptions(c *gin.Context) {
	skip, limit := pagination(c)
	items, total, err := h.transcribeSvc.List(c.Request.Context(), skip, limit, c.Query("video_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"transcriptions": items, "total": total})
}

// GET /api/transcriptions/:id
func (h *TranscriptionHandler) GetTranscription(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	t, err := h.transcribeSvc.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, t)
}

// DELETE /api/transcriptions/:id
func (h *TranscriptionHandler) DeleteTranscription(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if err := h.transcribeSvc.Delete(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseUintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return uint(v), nil
}
