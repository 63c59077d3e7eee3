package binder

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

// DefaultMaxUploadSize caps multipart request bodies.
const DefaultMaxUploadSize = 10 << 20

// File reads a single file field from a multipart/form-data request whose
// body is at most maxSize bytes.
func File(r *http.Request, field string, maxSize int64) (*multipart.FileHeader, error) {
	if err := requireMediaType(r, "multipart/form-data"); err != nil {
		return nil, err
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxSize)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return nil, fmt.Errorf("%w: max %d bytes", ErrRequestTooLarge, maxSize)
		}
		return nil, errors.Join(ErrFailedToParseForm, err)
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingFile, field)
	}
	return files[0], nil
}
