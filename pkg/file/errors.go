package file

import "errors"

var (
	ErrNilFileHeader      = errors.New("file header is nil")
	ErrInvalidPath        = errors.New("invalid path")
	ErrFileNotFound       = errors.New("file not found")
	ErrFileTooLarge       = errors.New("file size exceeds maximum allowed size")
	ErrMIMETypeNotAllowed = errors.New("MIME type is not allowed")

	ErrFailedToOpenFile        = errors.New("failed to open file")
	ErrFailedToReadFile        = errors.New("failed to read file")
	ErrFailedToWriteFile       = errors.New("failed to write file")
	ErrFailedToDeleteFile      = errors.New("failed to delete file")
	ErrFailedToCreateDirectory = errors.New("failed to create directory")

	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrOperationTimeout   = errors.New("operation timed out")
	ErrOperationCanceled  = errors.New("operation canceled")

	ErrInvalidConfig      = errors.New("invalid storage configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
)
