package rbac

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/greenloop/greenloop/internal/observability"
	"github.com/greenloop/greenloop/internal/shared"
)

func sessionRequest(t *testing.T, userID, role string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	sess := &shared.Session{ID: "test-session"}
	sess.SetIdentity(userID, role)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequireCapabilityAllowsHolder(t *testing.T) {
	mw := Middleware{Guard: newTestGuard(), Logger: slog.Default()}

	called := false
	handler := mw.RequireCapability(CapManageUsers)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(t, "1", "admin"))

	if !called {
		t.Fatal("expected wrapped handler to run")
	}
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
}

func TestRequireCapabilityDeniesWithDecisionPayload(t *testing.T) {
	mw := Middleware{Guard: newTestGuard(), Logger: slog.Default()}

	handler := mw.RequireCapability(CapManageUsers)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("wrapped handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(t, "2", "trash_hero"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	var decision Decision
	if err := json.Unmarshal(rr.Body.Bytes(), &decision); err != nil {
		t.Fatalf("decode decision: %v", err)
	}
	if decision.Outcome != OutcomeDenialView {
		t.Fatalf("expected denial_view outcome, got %s", decision.Outcome)
	}
	if decision.Denial == nil || decision.Denial.Role != RoleTrashHero {
		t.Fatalf("unexpected denial payload: %+v", decision.Denial)
	}
}

func TestRequireCapabilityDenialIncrementsCounter(t *testing.T) {
	metrics := observability.NewMetrics()
	mw := Middleware{Guard: newTestGuard(), Logger: slog.Default(), Metrics: metrics}

	handler := mw.RequireCapability(CapManageUsers)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("wrapped handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(t, "2", "trash_hero"))
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}

	scrape := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := scrape.Body.String()
	want := `greenloop_access_denials_total{role="trash_hero",rule="require_capability"} 1`
	if !strings.Contains(body, want) {
		t.Fatalf("expected denial counter in output, got: %s", body)
	}
}

func TestRequireRolesWithoutSessionIsUnauthorized(t *testing.T) {
	mw := Middleware{Guard: newTestGuard(), Logger: slog.Default()}

	handler := mw.RequireRoles(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("wrapped handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/protected", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestRequireRolesFailsClosedOnUnknownRole(t *testing.T) {
	mw := Middleware{Guard: newTestGuard(), Logger: slog.Default()}

	handler := mw.RequireRoles(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("wrapped handler must not run")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(t, "3", "superuser"))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
}
