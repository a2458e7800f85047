package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/services"
)

type QuestionHandler struct {
	log         *logger.Logger
	questionSvc services.QuestionService
}

func NewQuestionHandler(log *logger.Logger, questionSvc services.QuestionService) *QuestionHandler {
	return &QuestionHandler{
		log:         log.With("handler", "QuestionHandler"),
		questionSvc: questionSvc,
	}
}

type generateRequest struct {
	VideoIDs      []string `json:"video_ids"`
	QuestionCount int      `json:"question_count"`
}

// POST /api/questions/generate
// One generation run across all requested videos.
func (h *QuestionHandler) GenerateQuestions(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if len(req.VideoIDs) == 0 {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Errorf("video_ids must be a non-empty array"))
		return
	}
	summary, err := h.questionSvc.Generate(c.Request.Context(), req.VideoIDs, req.QuestionCount)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, summary)
}

// GET /api/questions/health
// Reachability probe for the question model endpoint.
func (h *QuestionHandler) Health(c *gin.Context) {
	if err := h.questionSvc.Health(c.Request.Context()); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"status": "ok"})
}
