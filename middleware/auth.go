package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"patrolwatch/access"
	"patrolwatch/auth"
	"patrolwatch/db"
	"patrolwatch/models"
)

type contextKey string

const UserContextKey contextKey = "user"

// AuthMiddleware validates JWT tokens and injects the user into context.
// Downstream code trusts the resolved {id, role} pair and never re-derives
// identity.
func AuthMiddleware(jwtManager *auth.JWTManager, store db.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, "UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
				return
			}

			token, err := auth.ExtractToken(authHeader)
			if err != nil {
				writeError(w, "UNAUTHORIZED", "Invalid authorization header", http.StatusUnauthorized)
				return
			}

			claims, err := jwtManager.ValidateToken(token)
			if err != nil {
				writeError(w, "UNAUTHORIZED", "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			// Fetch the user so a deleted account is locked out immediately
			user, err := store.GetUser(r.Context(), claims.UserID)
			if err != nil {
				writeError(w, "UNAUTHORIZED", "User not found", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// RequireOperation gates a route on the access policy table. The check runs
// once per call; handlers behind it only add the guard self-scoping rule.
func RequireOperation(op access.Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUserFromContext(r.Context())
			if !ok {
				writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
				return
			}

			if !access.Allowed(user.Role, op) {
				writeError(w, "FORBIDDEN", "Insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"code":  code,
	})
}
