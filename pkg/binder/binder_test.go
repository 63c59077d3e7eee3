package binder_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/showroom/pkg/binder"
)

type listingRequest struct {
	Make  string   `json:"make"`
	Year  int      `json:"year"`
	Tags  []string `json:"tags"`
	Notes *string  `json:"notes"`
}

func jsonRequest(body, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req
}

func TestJSON(t *testing.T) {
	t.Parallel()

	bind := binder.JSON()

	t.Run("decodes and trims", func(t *testing.T) {
		t.Parallel()

		var v listingRequest
		err := bind(jsonRequest(`{"make":"  Audi ","year":2020,"tags":[" a "],"notes":" n "}`, "application/json; charset=utf-8"), &v)
		require.NoError(t, err)
		assert.Equal(t, "Audi", v.Make)
		assert.Equal(t, 2020, v.Year)
		assert.Equal(t, []string{"a"}, v.Tags)
		require.NotNil(t, v.Notes)
		assert.Equal(t, "n", *v.Notes)
	})

	t.Run("content type", func(t *testing.T) {
		t.Parallel()

		var v listingRequest
		assert.ErrorIs(t, bind(jsonRequest(`{}`, ""), &v), binder.ErrMissingContentType)
		assert.ErrorIs(t, bind(jsonRequest(`{}`, "text/plain"), &v), binder.ErrUnsupportedMediaType)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()

		for _, body := range []string{``, `{`, `{"make":1}`, `{"unknown":true}`, `{} {}`} {
			var v listingRequest
			assert.ErrorIs(t, bind(jsonRequest(body, "application/json"), &v), binder.ErrFailedToParseJSON, body)
		}
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		body := `{"make":"` + strings.Repeat("a", binder.DefaultMaxJSONSize) + `"}`
		var v listingRequest
		assert.ErrorIs(t, bind(jsonRequest(body, "application/json"), &v), binder.ErrRequestTooLarge)
	})
}

func multipartRequest(t *testing.T, field string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, "car.jpg")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestFile(t *testing.T) {
	t.Parallel()

	t.Run("reads the file", func(t *testing.T) {
		t.Parallel()

		fh, err := binder.File(multipartRequest(t, "image", []byte("jpeg-bytes")), "image", 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "car.jpg", fh.Filename)
		assert.Equal(t, int64(10), fh.Size)
	})

	t.Run("missing field", func(t *testing.T) {
		t.Parallel()

		_, err := binder.File(multipartRequest(t, "other", []byte("x")), "image", 1<<20)
		assert.ErrorIs(t, err, binder.ErrMissingFile)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		_, err := binder.File(multipartRequest(t, "image", bytes.Repeat([]byte("x"), 4096)), "image", 512)
		assert.ErrorIs(t, err, binder.ErrRequestTooLarge)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()

		_, err := binder.File(jsonRequest(`{}`, "application/json"), "image", 1<<20)
		assert.ErrorIs(t, err, binder.ErrUnsupportedMediaType)
	})
}
