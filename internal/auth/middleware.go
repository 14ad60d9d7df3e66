package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/Andrew-dev1/StockSprout/internal/models"
)

type contextKey string

const actorKey contextKey = "actor"

// Actor is the authenticated caller attached to a request context
type Actor struct {
	UserID   string
	FamilyID string
	Role     string
}

// Middleware verifies the bearer token and attaches the actor to the
// request context. requiredRole restricts the route to one role; pass
// an empty string to accept either.
func (m *Manager) Middleware(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := m.VerifyToken(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if requiredRole != "" && claims.Role != requiredRole {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			actor := &Actor{
				UserID:   claims.UserID,
				FamilyID: claims.FamilyID,
				Role:     claims.Role,
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
		})
	}
}

// RequireChild restricts a route to child sessions
func (m *Manager) RequireChild() func(http.Handler) http.Handler {
	return m.Middleware(models.RoleChild)
}

// RequireParent restricts a route to parent sessions
func (m *Manager) RequireParent() func(http.Handler) http.Handler {
	return m.Middleware(models.RoleParent)
}

// ActorFromContext returns the authenticated actor, or nil when the
// request did not pass through the middleware.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(actorKey).(*Actor)
	return actor
}
