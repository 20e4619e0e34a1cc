package rbac

import (
	"log/slog"
	"net/http"

	"github.com/greenloop/greenloop/internal/observability"
	"github.com/greenloop/greenloop/internal/platform/httpx"
	"github.com/greenloop/greenloop/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers. Denied
// requests receive the structured denial payload so the client can render
// the standard explanation view.
type Middleware struct {
	Guard   *Guard
	Logger  *slog.Logger
	Metrics *observability.Metrics
}

// RequireCapability ensures the session role holds the capability.
func (m Middleware) RequireCapability(cap Capability) func(http.Handler) http.Handler {
	return m.require(RequireCapability(cap))
}

// RequireRoles ensures the session role is in the allow-list.
func (m Middleware) RequireRoles(roles ...Role) func(http.Handler) http.Handler {
	return m.require(AllowRoles(roles...))
}

func (m Middleware) require(rule GuardRule) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := m.currentRole(r)
			if !ok {
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
				return
			}
			decision := m.Guard.Evaluate(role, rule, GuardOptions{})
			if decision.Allowed() {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Info("access denied",
					slog.String("role", string(role)),
					slog.String("rule", string(rule.Kind())),
					slog.String("path", r.URL.Path))
			}
			m.Metrics.AccessDenied(string(rule.Kind()), string(role))
			httpx.JSON(w, http.StatusForbidden, decision)
		})
	}
}

func (m Middleware) currentRole(r *http.Request) (Role, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return "", false
	}
	// Fail closed: an unparseable role yields the empty capability set.
	role, _ := ParseRole(sess.Role())
	return role, true
}
