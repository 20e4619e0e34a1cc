package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenloop/greenloop/internal/platform/httpx"
	"github.com/greenloop/greenloop/internal/shared"
)

// Handler exposes the access-decision API consumed by the mobile client.
type Handler struct {
	logger *slog.Logger
	table  *Table
	gate   *Gate
	guard  *Guard
	rbac   Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, table *Table, gate *Gate, guard *Guard, rbac Middleware) *Handler {
	return &Handler{logger: logger, table: table, gate: gate, guard: guard, rbac: rbac}
}

// MountRoutes registers access-control routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/roles", h.listRoles)
	r.Get("/me/permissions", h.myPermissions)
	r.Get("/screens/{screen}", h.screenAccess)
	r.Post("/check", h.check)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(CapSystemSettings))
		r.Get("/table", h.fullTable)
	})
}

type roleInfo struct {
	Role Role     `json:"role"`
	Meta RoleMeta `json:"meta"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles := AllRoles()
	out := make([]roleInfo, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleInfo{Role: role, Meta: role.Meta()})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": out})
}

func (h *Handler) myPermissions(w http.ResponseWriter, r *http.Request) {
	role, ok := h.sessionRole(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":         role,
		"meta":         role.Meta(),
		"capabilities": h.table.PermissionsFor(role),
	})
}

func (h *Handler) screenAccess(w http.ResponseWriter, r *http.Request) {
	role, ok := h.sessionRole(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
		return
	}
	screen := ScreenName(chi.URLParam(r, "screen"))
	required, registered := h.gate.RequiredCapability(screen)
	resp := map[string]any{
		"screen":  screen,
		"allowed": h.gate.CanAccessScreen(role, screen),
	}
	if registered {
		resp["required_capability"] = required
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// checkRequest mirrors the legacy guard surface: callers may send a role
// allow-list, a capability, both, or neither. The allow-list wins when both
// are present; the core rule is constructed accordingly.
type checkRequest struct {
	AllowRoles  []Role     `json:"allow_roles,omitempty"`
	Capability  Capability `json:"capability,omitempty"`
	HasFallback bool       `json:"has_fallback"`
	SilentDeny  bool       `json:"silent_deny"`
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	role, ok := h.sessionRole(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
		return
	}
	var req checkRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}

	var rule GuardRule
	switch {
	case len(req.AllowRoles) > 0:
		rule = AllowRoles(req.AllowRoles...)
	case req.Capability != "":
		rule = RequireCapability(req.Capability)
	default:
		rule = Unguarded()
	}

	decision := h.guard.Evaluate(role, rule, GuardOptions{
		HasFallback: req.HasFallback,
		SilentDeny:  req.SilentDeny,
	})
	httpx.JSON(w, http.StatusOK, decision)
}

func (h *Handler) fullTable(w http.ResponseWriter, r *http.Request) {
	out := make(map[Role][]Capability, len(AllRoles()))
	for _, role := range AllRoles() {
		out[role] = h.table.PermissionsFor(role)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": out})
}

func (h *Handler) sessionRole(r *http.Request) (Role, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return "", false
	}
	role, _ := ParseRole(sess.Role())
	return role, true
}
