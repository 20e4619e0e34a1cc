package nav

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/greenloop/internal/rbac"
	"github.com/greenloop/greenloop/internal/shared"
)

func newTestNavRouter() chi.Router {
	handler := NewHandler(slog.Default(), newTestResolver())
	r := chi.NewRouter()
	r.Route("/nav", handler.MountRoutes)
	return r
}

func TestTabsRequireSession(t *testing.T) {
	router := newTestNavRouter()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nav/tabs", nil))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestTabsForSessionRole(t *testing.T) {
	router := newTestNavRouter()

	req := httptest.NewRequest(http.MethodGet, "/nav/tabs", nil)
	sess := &shared.Session{ID: "test"}
	sess.SetIdentity("1", "admin")
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Role rbac.Role `json:"role"`
		Tabs []Tab     `json:"tabs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, rbac.RoleAdmin, resp.Role)
	require.Len(t, resp.Tabs, 3)
	require.Equal(t, "Users", resp.Tabs[1].Label)
}
