package services

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrChunkingFailed  = errors.New("audio chunking failed")
	ErrEmbeddingFailed = errors.New("embedding failed")
	ErrLLMUnavailable  = errors.New("llm unavailable")
)

// DependentResource names a row blocking a delete.
type DependentResource struct {
	Type string `json:"type"`
	ID   any    `json:"id"`
}

// DependencyError is returned when a delete is refused because dependent
// rows exist and cascade was not requested.
type DependencyError struct {
	Resources []DependentResource
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("operation blocked by %d dependent resources", len(e.Resources))
}
