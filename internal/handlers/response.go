package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidscholar/vidscholar-backend/internal/repos"
	"github.com/vidscholar/vidscholar-backend/internal/services"
)

type ErrorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

// DependencyEnvelope is the 409 body for deletes blocked by dependents.
type DependencyEnvelope struct {
	Error              string                       `json:"error"`
	Message            string                       `json:"message"`
	DependentResources []services.DependentResource `json:"dependent_resources"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorBody{
		ErrorCode: code,
		Message:   msg,
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError translates service and repo sentinels onto the HTTP
// surface; anything unclassified is a 500.
func RespondServiceError(c *gin.Context, err error) {
	var dep *services.DependencyError
	switch {
	case errors.As(err, &dep):
		c.JSON(http.StatusConflict, DependencyEnvelope{
			Error:              "dependency_violation",
			Message:            "resource has dependent records; retry with cascade=true to delete them too",
			DependentResources: dep.Resources,
		})
	case errors.Is(err, repos.ErrNotFound):
		RespondError(c, http.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, repos.ErrOrderMismatch):
		RespondError(c, http.StatusBadRequest, "ORDER_MISMATCH", err)
	case errors.Is(err, repos.ErrDuplicate):
		RespondError(c, http.StatusConflict, "DUPLICATE", err)
	case errors.Is(err, services.ErrValidation):
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
	case errors.Is(err, services.ErrLLMUnavailable):
		RespondError(c, http.StatusServiceUnavailable, "LLM_UNAVAILABLE", err)
	default:
		RespondError(c, http.StatusInternalServerError, "INTERNAL", err)
	}
}
