package config

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// cache holds one parsed value per configuration type.
type cache struct {
	mu     sync.Mutex
	values map[reflect.Type]any
}

var (
	loaded = &cache{values: make(map[reflect.Type]any)}

	dotenvOnce sync.Once
)

// Load parses environment variables into v using `env` struct tags.
// The .env file in the working directory, if any, is applied once per process
// before the first parse and never overrides variables already set.
// Each configuration type is parsed once; later calls return the cached copy.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	dotenvOnce.Do(func() {
		// Missing .env is normal outside local development.
		_ = godotenv.Load()
	})

	key := reflect.TypeFor[T]()

	loaded.mu.Lock()
	defer loaded.mu.Unlock()

	if cached, ok := loaded.values[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded.values[key] = parsed
	*v = parsed
	return nil
}

// MustLoad is Load that panics on error. Intended for process startup.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
}

// Parse parses environment variables into v without caching and without
// reading .env files.
func Parse[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// LoadEnvFiles applies the given dotenv files without overriding variables
// already present in the environment.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return errors.Join(ErrLoadingEnvFile, err)
	}
	return nil
}
