package progression

import (
	"context"
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

// IdempotencyPort dedupes retried activity submissions.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Handler exposes the progression API.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	validate    *validator.Validate
	idempotency IdempotencyPort
	rbac        rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, idempotency IdempotencyPort, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		validate:    validator.New(),
		idempotency: idempotency,
		rbac:        rbacMW,
	}
}

// MountRoutes registers progression routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/activity", h.recordActivity)
	r.Get("/status", h.status)
	r.Get("/attributes", h.attributes)

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireCapability(rbac.CapApproveSubmissions))
		r.Post("/xp", h.grantXP)
	})
}

func (h *Handler) recordActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
		return
	}

	// Mobile clients retry on flaky networks; an Idempotency-Key dedupes
	// the retried POST before it reaches the streak logic.
	key := r.Header.Get("Idempotency-Key")
	if key != "" && h.idempotency != nil {
		if err := h.idempotency.CheckAndInsert(r.Context(), key, "progression"); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				status, err := h.service.Status(r.Context(), userID)
				if err != nil {
					h.logger.Error("load streak status", slog.Any("error", err))
					httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
					return
				}
				httpx.JSON(w, http.StatusOK, ActivityResponse{Change: ChangeNone, Status: status})
				return
			}
			h.logger.Error("idempotency check", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
	}

	result, err := h.service.RecordActivity(r.Context(), userID, time.Now())
	if err != nil {
		// The key must only mark activity that was actually recorded;
		// release it so the client's retry is processed, not deduped.
		if key != "" && h.idempotency != nil {
			_ = h.idempotency.Delete(r.Context(), key)
		}
		if errors.Is(err, ErrBackdatedActivity) {
			httpx.Problem(w, http.StatusConflict, "Backdated Activity", "activity predates the last recorded activity")
			return
		}
		h.logger.Error("record activity", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusOK, ActivityResponse{
		Change:       result.Change.Kind,
		NewMilestone: result.Change.NewMilestone,
		Status:       result.Status,
	})
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
		return
	}
	status, err := h.service.Status(r.Context(), userID)
	if err != nil {
		h.logger.Error("load streak status", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, status)
}

func (h *Handler) attributes(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUserID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no authenticated session")
		return
	}
	attrs, err := h.service.AttributesFor(r.Context(), userID)
	if err != nil {
		h.logger.Error("load attributes", slog.Int64("user_id", userID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, attrs)
}

func (h *Handler) grantXP(w http.ResponseWriter, r *http.Request) {
	var req GrantXPRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	progress, err := h.service.GrantXP(r.Context(), req.UserID, req.Points)
	if err != nil {
		h.logger.Error("grant xp", slog.Int64("user_id", req.UserID), slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user_id":  progress.UserID,
		"total_xp": progress.TotalXP,
		"level":    LevelForXP(progress.TotalXP),
	})
}

func (h *Handler) currentUserID(r *http.Request) (int64, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.User() == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
