package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/showroom/pkg/file"
)

func TestValidateImage(t *testing.T) {
	t.Parallel()

	t.Run("png", func(t *testing.T) {
		t.Parallel()

		ct, err := file.ValidateImage(fileHeader(t, "car.png", pngBytes), 1<<20)
		require.NoError(t, err)
		assert.Equal(t, "image/png", ct)
		assert.Equal(t, ".png", file.Extension(ct))
	})

	t.Run("renamed text file", func(t *testing.T) {
		t.Parallel()

		_, err := file.ValidateImage(fileHeader(t, "car.jpg", []byte("just some text")), 1<<20)
		assert.ErrorIs(t, err, file.ErrMIMETypeNotAllowed)
	})

	t.Run("too large", func(t *testing.T) {
		t.Parallel()

		_, err := file.ValidateImage(fileHeader(t, "car.png", pngBytes), 8)
		assert.ErrorIs(t, err, file.ErrFileTooLarge)
	})

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		_, err := file.ValidateImage(nil, 10)
		assert.ErrorIs(t, err, file.ErrNilFileHeader)
	})
}

func TestLocalStorage(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("save and delete", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		s, err := file.NewLocalStorage(dir, "/uploads")
		require.NoError(t, err)

		obj, err := s.Save(ctx, fileHeader(t, "car.png", pngBytes), "listings/abc/1.png")
		require.NoError(t, err)
		assert.Equal(t, "listings/abc/1.png", obj.Key)
		assert.Equal(t, int64(len(pngBytes)), obj.Size)
		assert.Equal(t, "image/png", obj.ContentType)
		assert.Equal(t, "/uploads/listings/abc/1.png", s.URL(obj.Key))

		_, err = os.Stat(filepath.Join(dir, "listings", "abc", "1.png"))
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, obj.Key))
		assert.ErrorIs(t, s.Delete(ctx, obj.Key), file.ErrFileNotFound)
	})

	t.Run("path traversal", func(t *testing.T) {
		t.Parallel()

		s, err := file.NewLocalStorage(t.TempDir(), "")
		require.NoError(t, err)

		for _, key := range []string{"../escape.png", "a/../../b.png", "", "a/./b"} {
			_, err := s.Save(ctx, fileHeader(t, "car.png", pngBytes), key)
			assert.ErrorIs(t, err, file.ErrInvalidPath, key)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		s, err := file.NewLocalStorage(t.TempDir(), "")
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err = s.Save(cctx, fileHeader(t, "car.png", pngBytes), "x.png")
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty base dir", func(t *testing.T) {
		t.Parallel()

		_, err := file.NewLocalStorage("", "")
		assert.ErrorIs(t, err, file.ErrInvalidConfig)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	s, err := file.New(context.Background(), file.Config{Driver: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &file.LocalStorage{}, s)

	_, err = file.New(context.Background(), file.Config{Driver: "ftp"})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)

	_, err = file.New(context.Background(), file.Config{Driver: "s3"})
	assert.ErrorIs(t, err, file.ErrInvalidConfig)
}
