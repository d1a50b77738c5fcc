// Package middlewares carries the HTTP middleware for caller identity.
//
// Authentication itself is an upstream concern: a gateway verifies the
// bearer token and forwards the verified identity in headers. This
// engine trusts those headers — it only insists they are present and
// scopes the privileged routes by role.
package middlewares

import (
	"context"
	"net/http"
)

const (
	// HeaderCallerID carries the upstream-verified caller identity.
	HeaderCallerID = "X-Caller-Id"
	// HeaderCallerRole carries the caller's role ("admin", "seller",
	// "customer").
	HeaderCallerRole = "X-Caller-Role"

	RoleAdmin = "admin"
)

type contextKey string

const identityKey contextKey = "caller-identity"

// Identity is the verified caller forwarded by the upstream gateway.
type Identity struct {
	ID   string
	Role string
}

// IdentityFromContext returns the caller identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// RequireIdentity rejects requests without a forwarded caller identity.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callerID := r.Header.Get(HeaderCallerID)
		if callerID == "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"success":false,"message":"authentication required"}`))
			return
		}
		id := Identity{ID: callerID, Role: r.Header.Get(HeaderCallerRole)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey, id)))
	})
}

// RequireRole gates a route on the caller's role. The status override
// route uses it so the unchecked admin path stays a distinct,
// capability-scoped operation rather than an accident.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || id.Role != role {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"success":false,"message":"insufficient privileges"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
