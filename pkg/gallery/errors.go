package gallery

import "errors"

var (
	ErrImageNotFound     = errors.New("image not found")
	ErrUploadInProgress  = errors.New("another upload to this listing is in progress")
	ErrFailedToLoadImage = errors.New("failed to load gallery image")
	ErrFailedToSaveImage = errors.New("failed to save gallery image")
)
