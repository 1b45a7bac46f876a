// Package apperr defines the error taxonomy shared across Ansuz.
package apperr

import "errors"

var (
	// ErrNotFound marks an operation that referenced a document, template,
	// or settings record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStorage marks a read or write the underlying store rejected
	// (quota, corruption, unavailable). Callers keep draft state intact.
	ErrStorage = errors.New("storage failure")
	// ErrRender marks a failed preview or export conversion, localized to
	// the affected pane or action.
	ErrRender = errors.New("render failure")
	// ErrValidation marks an operation rejected before any store access
	// because required fields were missing or invalid.
	ErrValidation = errors.New("validation failure")
)
