package middleware

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
)

// ContextKey avoids collisions with other packages' context values.
type ContextKey string

const (
	UserIDCtxKey   = ContextKey("user_id")
	UserRoleCtxKey = ContextKey("user_role")
)

// UserIDFromContext extracts the authenticated user ID set by JWTAuth.
func UserIDFromContext(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(UserIDCtxKey).(primitive.ObjectID)
	return id, ok
}

// RoleFromContext extracts the authenticated role set by JWTAuth.
func RoleFromContext(ctx context.Context) (entity.Role, bool) {
	role, ok := ctx.Value(UserRoleCtxKey).(entity.Role)
	return role, ok
}
