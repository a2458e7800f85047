package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/services"
)

type VideoHandler struct {
	log      *logger.Logger
	videoSvc services.VideoService
}

func NewVideoHandler(log *logger.Logger, videoSvc services.VideoService) *VideoHandler {
	return &VideoHandler{
		log:      log.With("handler", "VideoHandler"),
		videoSvc: videoSvc,
	}
}

type downloadRequest struct {
	URLs []string `json:"urls"`
}

// POST /api/videos/download
// Ingest a batch of YouTube URLs. Always 200; per-URL outcomes in body.
func (h *VideoHandler) DownloadVideos(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if len(req.URLs) == 0 {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Errorf("urls must be a non-empty array"))
		return
	}
	results := h.videoSvc.DownloadBatch(c.Request.Context(), req.URLs)
	var successful, duplicates, failed int
	for _, r := range results {
		switch r.Status {
		case services.StatusSuccess:
			successful++
		case services.StatusDuplicate:
			duplicates++
		default:
			failed++
		}
	}
	RespondOK(c, gin.H{
		"results":    results,
		"total":      len(results),
		"successful": successful,
		"duplicates": duplicates,
		"failed":     failed,
	})
}

// GET /api/videos
// List videos newest first.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	skip, limit := pagination(c)
	videos, err := h.videoSvc.List(c.Request.Context(), skip, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"videos": videos, "count": len(videos)})
}

// GET /api/videos/:video_id
func (h *VideoHandler) GetVideo(c *gin.Context) {
	video, err := h.videoSvc.Get(c.Request.Context(), c.Param("video_id"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, video)
}

// DELETE /api/videos/:video_id?cascade=true
// Refuses with 409 when dependents exist and cascade is absent.
func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	cascade := c.Query("cascade") == "true"
	videoID := c.Param("video_id")
	if err := h.videoSvc.Delete(c.Request.Context(), videoID, cascade); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
