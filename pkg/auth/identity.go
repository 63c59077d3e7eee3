package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Role is the caller's marketplace role.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// ParseRole matches case-insensitively. An empty value is a buyer.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleSeller:
		return RoleSeller, nil
	case RoleBuyer, "":
		return RoleBuyer, nil
	default:
		return "", ErrInvalidRole
	}
}

// Identity is the authenticated caller established upstream of this service.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// HasRole reports whether the identity holds any of roles. Admins pass every check.
func (i Identity) HasRole(roles ...Role) bool {
	if i.Role == RoleAdmin {
		return true
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

type identityCtxKey struct{}

// WithIdentity stores the identity in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// FromContext returns the identity stored by the middleware.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok
}

// UserID resolves the caller's user ID from ctx. Its signature matches
// entitlement.UserIDResolver.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := FromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return id.UserID, true
}
