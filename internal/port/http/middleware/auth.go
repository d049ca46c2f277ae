package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/surajpratapsingh112/shree-ecommerce/internal/domain/entity"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/platform/logger"
	"github.com/surajpratapsingh112/shree-ecommerce/internal/service"
)

// ContextKey is a private key type so context values cannot collide with
// other packages.
type ContextKey string

const (
	UserIDCtxKey   = ContextKey("user_id")
	UserRoleCtxKey = ContextKey("user_role")
)

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDCtxKey).(string)
	return id, ok && id != ""
}

func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleCtxKey).(string)
	return role, ok && role != ""
}

func IsAdmin(ctx context.Context) bool {
	role, _ := RoleFromContext(ctx)
	return role == string(entity.RoleAdmin)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": message})
}

// JWTAuth extracts and validates the bearer token and stores the user ID and
// role in the request context.
func JWTAuth(secret string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing authorization header")
				return
			}
			tokenString, found := strings.CutPrefix(header, "Bearer ")
			if !found || tokenString == "" {
				unauthorized(w, "invalid authorization header")
				return
			}

			claims, err := service.ParseToken(tokenString, secret)
			if err != nil {
				log.Debugf("Token validation failed: %v", err)
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDCtxKey, claims.UserID)
			ctx = context.WithValue(ctx, UserRoleCtxKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminOnly must run after JWTAuth.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "admin access required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
