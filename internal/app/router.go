package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/greenloop/greenloop/internal/auth"
	"github.com/greenloop/greenloop/internal/nav"
	"github.com/greenloop/greenloop/internal/observability"
	"github.com/greenloop/greenloop/internal/progression"
	"github.com/greenloop/greenloop/internal/rbac"
	"github.com/greenloop/greenloop/internal/shared"
	"github.com/greenloop/greenloop/internal/users"
	"github.com/greenloop/greenloop/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	SessionManager     *shared.SessionManager
	CSRFManager        *shared.CSRFManager
	AuthHandler        *auth.Handler
	AccessHandler      *rbac.Handler
	NavHandler         *nav.Handler
	ProgressionHandler *progression.Handler
	UsersHandler       *users.Handler
	JobHandler         *jobs.Handler
	RBACMiddleware     rbac.Middleware
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with GreenLoop defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/access", params.AccessHandler.MountRoutes)
	r.Route("/nav", params.NavHandler.MountRoutes)
	r.Route("/progression", params.ProgressionHandler.MountRoutes)
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			jr.Use(params.RBACMiddleware.RequireCapability(rbac.CapSystemSettings))
			params.JobHandler.MountRoutes(jr)
		})
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
