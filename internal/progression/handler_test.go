package progression

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/greenloop/internal/rbac"
	"github.com/greenloop/greenloop/internal/shared"
)

type stubIdempotency struct {
	keys map[string]bool
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{keys: map[string]bool{}}
}

func (s *stubIdempotency) CheckAndInsert(_ context.Context, key, _ string) error {
	if s.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	s.keys[key] = true
	return nil
}

func (s *stubIdempotency) Delete(_ context.Context, key string) error {
	delete(s.keys, key)
	return nil
}

func newTestProgressionRouter(repo *stubRepo) chi.Router {
	return newTestProgressionRouterWith(repo, nil)
}

func newTestProgressionRouterWith(repo *stubRepo, idem IdempotencyPort) chi.Router {
	svc := NewService(repo, nil, nil, nil)
	mw := rbac.Middleware{Guard: rbac.NewGuard(rbac.NewTable()), Logger: slog.Default()}
	handler := NewHandler(slog.Default(), svc, idem, mw)

	r := chi.NewRouter()
	r.Route("/progression", handler.MountRoutes)
	return r
}

func progressionRequest(method, target, body, userID, role string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		sess := &shared.Session{ID: "test"}
		sess.SetIdentity(userID, role)
		req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	}
	return req
}

func TestRecordActivityEndpoint(t *testing.T) {
	repo := newStubRepo()
	router := newTestProgressionRouter(repo)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, progressionRequest(http.MethodPost, "/progression/activity", "", "7", "trash_hero"))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ActivityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, ChangeStarted, resp.Change)
	require.Equal(t, 1, resp.Status.CurrentStreak)
}

func TestRecordActivityWithoutSessionIsUnauthorized(t *testing.T) {
	router := newTestProgressionRouter(newStubRepo())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, progressionRequest(http.MethodPost, "/progression/activity", "", "", ""))
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRecordActivityBackdatedConflict(t *testing.T) {
	repo := newStubRepo()
	// Stored activity is in the far future relative to the request clock.
	repo.records[7] = StreakRecord{
		UserID:           7,
		CurrentStreak:    3,
		LongestStreak:    3,
		LastActivityDate: DateOnly(day(40000)),
	}
	router := newTestProgressionRouter(repo)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, progressionRequest(http.MethodPost, "/progression/activity", "", "7", "trash_hero"))
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestRecordActivityIdempotencyKeyDedupesRetry(t *testing.T) {
	repo := newStubRepo()
	idem := newStubIdempotency()
	router := newTestProgressionRouterWith(repo, idem)

	req := progressionRequest(http.MethodPost, "/progression/activity", "", "7", "trash_hero")
	req.Header.Set("Idempotency-Key", "k-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	// Retrying the same key is answered from the dedupe with the stored
	// streak state, without a second recording.
	req = progressionRequest(http.MethodPost, "/progression/activity", "", "7", "trash_hero")
	req.Header.Set("Idempotency-Key", "k-1")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp ActivityResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, ChangeNone, resp.Change)
	require.Equal(t, 1, resp.Status.CurrentStreak)
}

func TestRecordActivityFailureReleasesIdempotencyKey(t *testing.T) {
	repo := newStubRepo()
	repo.records[7] = StreakRecord{
		UserID:           7,
		CurrentStreak:    3,
		LongestStreak:    3,
		LastActivityDate: DateOnly(day(40000)),
	}
	idem := newStubIdempotency()
	router := newTestProgressionRouterWith(repo, idem)

	req := progressionRequest(http.MethodPost, "/progression/activity", "", "7", "trash_hero")
	req.Header.Set("Idempotency-Key", "k-retry")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.False(t, idem.keys["k-retry"], "failed recording must release the key")

	// The retry reports the same failure instead of a phantom success.
	req = progressionRequest(http.MethodPost, "/progression/activity", "", "7", "trash_hero")
	req.Header.Set("Idempotency-Key", "k-retry")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)
}

func TestStatusEndpointZeroStreak(t *testing.T) {
	router := newTestProgressionRouter(newStubRepo())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, progressionRequest(http.MethodGet, "/progression/status", "", "7", "trash_hero"))
	require.Equal(t, http.StatusOK, rr.Code)

	var status StreakStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	require.Zero(t, status.CurrentStreak)
	require.Equal(t, 1.0, status.Multiplier)
}

func TestGrantXPEndpointRequiresApprovalCapability(t *testing.T) {
	router := newTestProgressionRouter(newStubRepo())
	body := `{"user_id":7,"points":50}`

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, progressionRequest(http.MethodPost, "/progression/xp", body, "7", "trash_hero"))
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, progressionRequest(http.MethodPost, "/progression/xp", body, "1", "admin"))
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		TotalXP int `json:"total_xp"`
		Level   int `json:"level"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 50, resp.TotalXP)
	require.Equal(t, 1, resp.Level)
}

func TestGrantXPEndpointValidatesPayload(t *testing.T) {
	router := newTestProgressionRouter(newStubRepo())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, progressionRequest(http.MethodPost, "/progression/xp", `{"user_id":7,"points":-5}`, "1", "admin"))
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
