package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bfauber71/MyParkingMgr-sub002/internal/platform/httpx"
	"github.com/bfauber71/MyParkingMgr-sub002/internal/shared"
)

type principalContextKey struct{}

// ContextWithPrincipal stores the resolved principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal placed by RequirePrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// DenialCounter tracks denied requests for monitoring.
type DenialCounter interface {
	CountDenial(reason string)
}

// Middleware wires authorization checks into the HTTP handler chain.
type Middleware struct {
	Resolver *PrincipalResolver
	Engine   *Engine
	Logger   *slog.Logger
	Denials  DenialCounter
}

// RequirePrincipal resolves the session into a Principal and stores it in the
// request context. Requests without a valid principal stop here with a 401
// before any policy or audit logic runs.
func (m Middleware) RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.Resolver.Resolve(r.Context())
		if err != nil {
			if !errors.Is(err, shared.ErrUnauthenticated) {
				if m.Logger != nil {
					m.Logger.Error("resolve principal", slog.Any("error", err))
				}
				httpx.Error(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			httpx.Unauthorized(w)
			return
		}
		ctx := ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Require gates a route on a non-property-scoped action. Scoped actions are
// checked in handlers where the target property is known.
func (m Middleware) Require(action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.Unauthorized(w)
				return
			}
			decision, err := m.Engine.CanPerform(r.Context(), principal, action, Global)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authorize", slog.Any("error", err))
				}
				httpx.Error(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !decision.Allowed {
				if m.Denials != nil {
					m.Denials.CountDenial(decision.Reason)
				}
				httpx.Forbidden(w, decision.Reason)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
