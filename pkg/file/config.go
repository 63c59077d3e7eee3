package file

import (
	"context"
	"fmt"
	"strings"
)

const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config selects and configures the storage backend.
type Config struct {
	Driver       string   `env:"STORAGE_DRIVER" envDefault:"local"`
	LocalDir     string   `env:"STORAGE_LOCAL_DIR" envDefault:"./uploads"`
	LocalBaseURL string   `env:"STORAGE_LOCAL_BASE_URL" envDefault:"/uploads/"`
	S3           S3Config `envPrefix:"STORAGE_"`
}

// New builds the Storage named by cfg.Driver.
func New(ctx context.Context, cfg Config, opts ...S3Option) (Storage, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverLocal, "":
		return NewLocalStorage(cfg.LocalDir, cfg.LocalBaseURL)
	case DriverS3:
		return NewS3Storage(ctx, cfg.S3, opts...)
	default:
		return nil, fmt.Errorf("%w: unknown driver %q", ErrInvalidConfig, cfg.Driver)
	}
}
