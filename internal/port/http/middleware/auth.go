package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
	"github.com/gb112302/agriconnect/internal/service"
)

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}

func forbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`{"success":false,"message":"` + message + `"}`))
}

// JWTAuth verifies the bearer token and checks it is still the active session
// for the user, so logout and bans take effect before token expiry.
func JWTAuth(tokens *service.TokenManager, sessions repository.SessionRepository, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w, "missing or malformed authorization header")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				unauthorized(w, "invalid token subject")
				return
			}

			cached, err := sessions.GetToken(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					unauthorized(w, "session expired")
					return
				}
				// Redis being down should not lock everyone out; the JWT
				// signature already proves authenticity.
				log.Warnf("Session lookup failed for user %s: %v", claims.UserID, err)
			} else if cached != tokenString {
				unauthorized(w, "session expired")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route to users acting under the given role. Admins pass
// everywhere.
func RequireRole(role entity.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorRole, ok := RoleFromContext(r.Context())
			if !ok {
				unauthorized(w, "authentication required")
				return
			}
			if actorRole != role && actorRole != entity.RoleAdmin {
				forbidden(w, "requires "+string(role)+" role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin gates a route to administrators.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorRole, ok := RoleFromContext(r.Context())
			if !ok || actorRole != entity.RoleAdmin {
				forbidden(w, "requires admin role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
