package repos

import "errors"

// Store-level contract errors. Services and handlers match these with
// errors.Is to pick per-item statuses and HTTP mappings.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrDuplicate       = errors.New("duplicate external id")
	ErrVectorDimension = errors.New("embedding vector has wrong dimension")
	ErrOrderMismatch   = errors.New("question id set does not match generation")
)
