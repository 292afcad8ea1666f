package decisions

import (
	"context"
	"errors"
	"net/http"

	"github.com/JaimeStill/intake/internal/pipeline"
	"github.com/JaimeStill/intake/pkg/storage"
)

// Domain errors for decision operations.
var (
	ErrNotFound       = errors.New("decision not found")
	ErrDuplicate      = errors.New("decision already exists")
	ErrInvalidRequest = errors.New("document_keys must list at least one non-empty key")
)

// MapHTTPStatus maps decision and pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, pipeline.ErrNoDocuments):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrTooLarge),
		errors.Is(err, storage.ErrInvalidKey),
		errors.Is(err, pipeline.ErrUnsupportedDocument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, pipeline.ErrDocumentFailed), errors.Is(err, pipeline.ErrCrossValidationFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
