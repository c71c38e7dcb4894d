package auth

import (
	"context"

	"bookinghub/models"
)

type userKey struct{}

// WithUser returns a copy of ctx carrying the signed-in user.
func WithUser(ctx context.Context, user *models.AuthUser) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFrom returns the signed-in user stored by WithUser.
func UserFrom(ctx context.Context) (*models.AuthUser, bool) {
	user, ok := ctx.Value(userKey{}).(*models.AuthUser)
	return user, ok && user != nil
}
