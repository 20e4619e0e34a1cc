package nav

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenloop/greenloop/internal/platform/httpx"
	"github.com/greenloop/greenloop/internal/rbac"
	"github.com/greenloop/greenloop/internal/shared"
)

// Handler serves the resolved navigation for the current session.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, resolver *Resolver) *Handler {
	return &Handler{logger: logger, resolver: resolver}
}

// MountRoutes registers navigation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/tabs", h.tabs)
}

func (h *Handler) tabs(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
		return
	}
	role, _ := rbac.ParseRole(sess.Role())
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role": role,
		"tabs": h.resolver.Tabs(role),
	})
}
