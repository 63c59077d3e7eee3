package logger_test

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/showroom/pkg/logger"
)

type tier string

func TestAttrs(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	err := errors.New("boom")

	tests := []struct {
		name string
		attr slog.Attr
		key  string
		want string
	}{
		{name: "error", attr: logger.Error(err), key: "error", want: "boom"},
		{name: "user", attr: logger.UserID(id), key: "user_id", want: id.String()},
		{name: "listing", attr: logger.ListingID(id), key: "listing_id", want: id.String()},
		{name: "raw tier", attr: logger.Tier("VIP"), key: "tier", want: "VIP"},
		{name: "typed tier", attr: logger.Tier(tier("PREMIUM")), key: "tier", want: "PREMIUM"},
		{name: "request", attr: logger.RequestID("abc"), key: "request_id", want: "abc"},
		{name: "component", attr: logger.Component("gateway"), key: "component", want: "gateway"},
		{name: "event", attr: logger.Event("listing.created"), key: "event", want: "listing.created"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, tt.want, tt.attr.Value.Resolve().String())
		})
	}

	t.Run("zero values are empty", func(t *testing.T) {
		t.Parallel()

		for _, a := range []slog.Attr{
			logger.Error(nil),
			logger.UserID(uuid.Nil),
			logger.ListingID(uuid.Nil),
			logger.Tier(""),
			logger.RequestID(""),
		} {
			assert.True(t, a.Equal(slog.Attr{}))
		}
	})
}
