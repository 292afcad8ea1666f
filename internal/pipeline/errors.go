package pipeline

import "errors"

// Sentinel errors for pipeline runs.
var (
	ErrDocumentFailed        = errors.New("document processing failed")
	ErrCrossValidationFailed = errors.New("cross-validation failed")
	ErrUnsupportedDocument   = errors.New("unsupported document type")
	ErrRenderFailed          = errors.New("failed to render document image")
	ErrNoDocuments           = errors.New("at least one document key is required")
)
