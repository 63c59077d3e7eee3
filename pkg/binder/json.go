package binder

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strings"
)

// DefaultMaxJSONSize caps JSON request bodies.
const DefaultMaxJSONSize = 1 << 20

// JSON returns a binder decoding an application/json body into v.
// Unknown fields and trailing data are rejected; string fields are trimmed.
func JSON() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if err := requireMediaType(r, "application/json"); err != nil {
			return err
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, DefaultMaxJSONSize+1))
		if err != nil {
			return errors.Join(ErrFailedToParseJSON, err)
		}
		if len(body) > DefaultMaxJSONSize {
			return fmt.Errorf("%w: max %d bytes", ErrRequestTooLarge, DefaultMaxJSONSize)
		}

		dec := json.NewDecoder(strings.NewReader(string(body)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: empty body", ErrFailedToParseJSON)
			}
			return errors.Join(ErrFailedToParseJSON, err)
		}
		if dec.More() {
			return fmt.Errorf("%w: unexpected data after JSON value", ErrFailedToParseJSON)
		}

		trimStrings(reflect.ValueOf(v))
		return nil
	}
}

func requireMediaType(r *http.Request, want string) error {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return fmt.Errorf("%w: expected %s", ErrMissingContentType, want)
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil || mt != want {
		return fmt.Errorf("%w: got %s, expected %s", ErrUnsupportedMediaType, ct, want)
	}
	return nil
}

func trimStrings(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if !rv.IsNil() {
			trimStrings(rv.Elem())
		}
	case reflect.String:
		if rv.CanSet() {
			rv.SetString(strings.TrimSpace(rv.String()))
		}
	case reflect.Struct:
		for i := range rv.NumField() {
			if f := rv.Field(i); f.CanSet() {
				trimStrings(f)
			}
		}
	case reflect.Slice:
		for i := range rv.Len() {
			trimStrings(rv.Index(i))
		}
	}
}
