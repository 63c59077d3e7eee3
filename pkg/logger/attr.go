package logger

import (
	"log/slog"

	"github.com/google/uuid"
)

// Error returns an empty attribute for a nil error.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID returns an empty attribute for uuid.Nil.
func UserID(id uuid.UUID) slog.Attr {
	return identifier("user_id", id)
}

// ListingID returns an empty attribute for uuid.Nil.
func ListingID(id uuid.UUID) slog.Attr {
	return identifier("listing_id", id)
}

// Tier accepts both raw stored values and parsed tiers.
func Tier[T ~string](tier T) slog.Attr {
	if tier == "" {
		return slog.Attr{}
	}
	return slog.String("tier", string(tier))
}

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Event names a domain event, e.g. "listing.created".
func Event(name string) slog.Attr {
	return slog.String("event", name)
}

func identifier(key string, id uuid.UUID) slog.Attr {
	if id == uuid.Nil {
		return slog.Attr{}
	}
	return slog.String(key, id.String())
}
