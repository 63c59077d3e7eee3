package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrFailedToParseJSON    = errors.New("failed to parse JSON request body")
	ErrRequestTooLarge      = errors.New("request body too large")
	ErrMissingFile          = errors.New("missing file in multipart form")
	ErrFailedToParseForm    = errors.New("failed to parse multipart form")
)
