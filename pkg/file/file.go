package file

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"slices"
	"strings"
)

// Object describes a stored object.
type Object struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// Storage is an object store addressed by slash-separated keys.
type Storage interface {
	// Save writes the uploaded file under key and returns what was stored.
	Save(ctx context.Context, fh *multipart.FileHeader, key string) (*Object, error)
	// Delete removes the object. A missing object is ErrFileNotFound.
	Delete(ctx context.Context, key string) error
	// URL returns the public URL of the object.
	URL(key string) string
}

// ImageTypes are the content types accepted for gallery images.
var ImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectContentType sniffs the first 512 bytes of the upload. The extension
// and the client-sent header are ignored.
func DetectContentType(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}

	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFailedToOpenFile, err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 512)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: %v", ErrFailedToReadFile, err)
	}
	return http.DetectContentType(buf[:n]), nil
}

// ValidateImage checks the upload is one of ImageTypes and at most maxBytes
// long. It returns the detected content type.
func ValidateImage(fh *multipart.FileHeader, maxBytes int64) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return "", fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, fh.Size, maxBytes)
	}

	ct, err := DetectContentType(fh)
	if err != nil {
		return "", err
	}
	if !slices.Contains(ImageTypes, ct) {
		return "", fmt.Errorf("%w: %s", ErrMIMETypeNotAllowed, ct)
	}
	return ct, nil
}

// Extension returns the canonical file extension for an image content type.
func Extension(contentType string) string {
	return extensions[contentType]
}

// cleanKey normalises a key and rejects anything that escapes the root.
func cleanKey(key string) (string, error) {
	key = strings.ReplaceAll(key, "\\", "/")
	if strings.Contains(key, "\x00") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	cleaned := strings.TrimPrefix(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return cleaned, nil
}
