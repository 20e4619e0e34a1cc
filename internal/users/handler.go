package users

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/greenloop/greenloop/internal/platform/httpx"
	"github.com/greenloop/greenloop/internal/rbac"
	"github.com/greenloop/greenloop/internal/shared"
)

// Handler exposes the user administration API.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbac:      mw,
		validator: validator.New(),
	}
}

// MountRoutes registers user management routes. Every route requires the
// user management capability.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.rbac.RequireCapability(rbac.CapManageUsers))
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/role", h.changeRole)
	r.Post("/{id}/active", h.setActive)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, pagination, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	items := make([]UserResponse, 0, len(list))
	for _, user := range list {
		items = append(items, toResponse(user))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"users": items,
		"pagination": map[string]int{
			"page":        pagination.Page,
			"per_page":    pagination.PerPage,
			"total":       pagination.Total,
			"total_pages": pagination.TotalPages,
		},
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user does not exist")
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(user))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email, name, role and password are required")
		return
	}

	id, err := h.service.Create(r.Context(), actorID(r), req.Email, req.Name, req.Role, req.Password)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "email already registered")
			return
		}
		if _, ok := rbac.ParseRole(req.Role); !ok {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
			return
		}
		h.logger.Error("create user", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handler) changeRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req ChangeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if _, valid := rbac.ParseRole(req.Role); !valid {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown role")
		return
	}

	if err := h.service.ChangeRole(r.Context(), actorID(r), id, req.Role); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user does not exist")
			return
		}
		h.logger.Error("change role", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil || req.Active == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "active flag is required")
		return
	}

	if err := h.service.SetActive(r.Context(), actorID(r), id, *req.Active); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "user does not exist")
			return
		}
		h.logger.Error("set active", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return 0, false
	}
	return id, true
}

func actorID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}

func toResponse(user User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.UTC().Format(time.RFC3339),
	}
}
