package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidscholar/vidscholar-backend/internal/platform/logger"
	"github.com/vidscholar/vidscholar-backend/internal/services"
)

type GenerationHandler struct {
	log    *logger.Logger
	genSvc services.GenerationService
}

func NewGenerationHandler(log *logger.Logger, genSvc services.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		log:    log.With("handler", "GenerationHandler"),
		genSvc: genSvc,
	}
}

// GET /api/generations
func (h *GenerationHandler) ListGenerations(c *gin.Context) {
	skip, limit := pagination(c)
	items, total, err := h.genSvc.List(c.Request.Context(), skip, limit)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"generations": items, "total": total})
}

// GET /api/generations/:id
// Includes questions in display order.
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	gen, err := h.genSvc.Get(c.Request.Context(), id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gen)
}

// DELETE /api/generations/:id
// Questions go with it.
func (h *GenerationHandler) DeleteGeneration(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if err := h.genSvc.Delete(c.Request.Context(), id); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /api/generations/:id/questions/:question_id
// Partial edit; omitted fields keep their stored values.
func (h *GenerationHandler) UpdateQuestion(c *gin.Context) {
	genID, err := parseUintParam(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	questionID, err := parseUintParam(c, "question_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	var update services.QuestionUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	q, err := h.genSvc.UpdateQuestion(c.Request.Context(), genID, questionID, update)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, q)
}

// DELETE /api/generations/:id/questions/:question_id
func (h *GenerationHandler) DeleteQuestion(c *gin.Context) {
	genID, err := parseUintParam(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	questionID, err := parseUintParam(c, "question_id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if err := h.genSvc.DeleteQuestion(c.Request.Context(), genID, questionID); err != nil {
		RespondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	QuestionIDs []uint `json:"question_ids"`
}

// PUT /api/generations/:id/questions/reorder
// The id list must be exactly the generation's question set.
func (h *GenerationHandler) ReorderQuestions(c *gin.Context) {
	genID, err := parseUintParam(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}
	if len(req.QuestionIDs) == 0 {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Errorf("question_ids must be a non-empty array"))
		return
	}
	questions, err := h.genSvc.Reorder(c.Request.Context(), genID, req.QuestionIDs)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"questions": questions})
}
