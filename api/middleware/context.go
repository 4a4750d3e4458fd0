package middleware

import (
	"context"

	"github.com/google/uuid"

	pkgerrors "github.com/voo-ward/voo-citizen-backend/pkg/errors"
)

// Principal is the authenticated caller as seeded by Auth.
type Principal struct {
	UserID string
	Role   string
	Phone  string
}

type principalKey struct{}

func principalFrom(ctx context.Context) Principal {
	if ctx == nil {
		return Principal{}
	}
	p, _ := ctx.Value(principalKey{}).(Principal)
	return p
}

// WithPrincipal stores p on ctx, replacing any earlier caller.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// WithUserID sets only the user id, keeping the rest of the principal.
func WithUserID(ctx context.Context, userID string) context.Context {
	p := principalFrom(ctx)
	p.UserID = userID
	return WithPrincipal(ctx, p)
}

// WithRole sets only the role, keeping the rest of the principal.
func WithRole(ctx context.Context, role string) context.Context {
	p := principalFrom(ctx)
	p.Role = role
	return WithPrincipal(ctx, p)
}

func UserIDFromContext(ctx context.Context) string { return principalFrom(ctx).UserID }

func RoleFromContext(ctx context.Context) string { return principalFrom(ctx).Role }

func PhoneFromContext(ctx context.Context) string { return principalFrom(ctx).Phone }

// UserUUIDFromContext is false for anonymous requests or malformed ids.
func UserUUIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// RequireUserID is UserUUIDFromContext for handlers mounted behind Auth.
func RequireUserID(ctx context.Context) (uuid.UUID, error) {
	id, ok := UserUUIDFromContext(ctx)
	if !ok {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	return id, nil
}
