package auth

import (
	"context"
	"net/http"
	"strings"

	"vehiculos/internal/lifecycle"
)

type contextKey string

const actorKey contextKey = "actor"

// Middleware validates the bearer token and threads the resulting actor
// through the request context. There is no ambient session: handlers always
// pass the actor down explicitly.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			actor, err := ParseToken(secret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
		})
	}
}

// AdminOnly rejects non-admin actors at the router. The lifecycle enforces
// the same rule at the authority boundary; this gate only spares a round
// trip to the service.
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || actor.Role != lifecycle.RoleAdmin {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func ActorFromContext(ctx context.Context) (lifecycle.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(lifecycle.Actor)
	return actor, ok
}
