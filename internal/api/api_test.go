package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"team-portal/internal/models"
	"team-portal/internal/service"
	"team-portal/internal/testdb"
	"team-portal/pkg/logger"
)

type testServer struct {
	router *gin.Engine
	users  *service.UserService
	now    time.Time
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()

	store := testdb.Store(t)
	log := logger.Discard()
	users := service.NewUserService(store.Users, log)

	h := NewHandler(Services{
		Users:     users,
		Entries:   service.NewTimeEntryService(store, time.UTC, log),
		Status:    service.NewStatusService(store, time.UTC),
		Orders:    service.NewServiceOrderService(store.Orders, log),
		Documents: service.NewDocumentService(store.Documents, log),
		Tokens:    service.NewTokenService("test-secret", time.Hour),
	}, log)
	srv := &testServer{users: users, now: now}
	h.now = func() time.Time { return srv.now }

	if _, err := users.InitializeAdmin(context.Background(), "admin", "admin@example.com", "adminpassword"); err != nil {
		t.Fatalf("init admin: %v", err)
	}

	srv.router = NewRouter(h)
	return srv
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %s", username, rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.Token
}

// registerApproved registers a user and approves it with the admin token.
func (s *testServer) registerApproved(t *testing.T, adminToken, username string) (uint, string) {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		User models.User `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register: %v", err)
	}

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/approve", resp.User.ID), adminToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	return resp.User.ID, s.login(t, username, "secret123")
}

func TestLoginPendingAccount(t *testing.T) {
	srv := newTestServer(t, time.Now())

	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ana", "email": "ana@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "ana", "password": "secret123"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for pending account, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "ana", "email": "ana2@example.com", "password": "secret123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate username, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"username": "bo"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid body, got %d", rec.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := newTestServer(t, time.Now())

	if rec := srv.do(t, http.MethodPost, "/api/ponto/clock-in", "", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPost, "/api/ponto/clock-in", "not-a-token", nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with bad token, got %d", rec.Code)
	}
}

func TestClockFlow(t *testing.T) {
	// Monday 08:00, clock out 500 minutes later
	clockIn := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	srv := newTestServer(t, clockIn)
	admin := srv.login(t, "admin", "adminpassword")
	_, token := srv.registerApproved(t, admin, "ana")

	schedule := map[string]any{"schedule": map[string]any{
		"segunda": map[string]string{"start": "08:00", "end": "17:00"},
	}}
	if rec := srv.do(t, http.MethodPut, "/api/me/schedule", token, schedule); rec.Code != http.StatusOK {
		t.Fatalf("set schedule: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if rec := srv.do(t, http.MethodPost, "/api/ponto/clock-in", token, nil); rec.Code != http.StatusCreated {
		t.Fatalf("clock in: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec := srv.do(t, http.MethodPost, "/api/ponto/clock-in", token, nil); rec.Code != http.StatusConflict {
		t.Fatalf("second clock in: expected 409, got %d", rec.Code)
	}

	srv.now = clockIn.Add(500 * time.Minute)

	rec := srv.do(t, http.MethodPost, "/api/ponto/clock-out", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("clock out: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var out service.ClockOutResult
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode clock out: %v", err)
	}
	if out.DurationMinutes != 500 || out.Reconciliation.BankMinutes != 40 {
		t.Errorf("unexpected clock out result %+v", out)
	}

	if rec := srv.do(t, http.MethodPost, "/api/ponto/clock-out", token, nil); rec.Code != http.StatusConflict {
		t.Fatalf("clock out without open entry: expected 409, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodGet, "/api/ponto/entries", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("entries: expected 200, got %d", rec.Code)
	}
}

func TestScheduleValidation(t *testing.T) {
	srv := newTestServer(t, time.Now())
	admin := srv.login(t, "admin", "adminpassword")

	bad := map[string]any{"schedule": map[string]any{
		"segunda": map[string]string{"start": "8h", "end": "17:00"},
	}}
	if rec := srv.do(t, http.MethodPut, "/api/me/schedule", admin, bad); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed time: expected 400, got %d", rec.Code)
	}

	unknown := map[string]any{"schedule": map[string]any{
		"monday": map[string]string{"start": "08:00", "end": "17:00"},
	}}
	if rec := srv.do(t, http.MethodPut, "/api/me/schedule", admin, unknown); rec.Code != http.StatusBadRequest {
		t.Errorf("unknown weekday: expected 400, got %d", rec.Code)
	}
}

func TestOccurrenceEndpoints(t *testing.T) {
	srv := newTestServer(t, time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	admin := srv.login(t, "admin", "adminpassword")

	if rec := srv.do(t, http.MethodPost, "/api/ponto/occurrences", admin, map[string]string{"description": "  "}); rec.Code != http.StatusBadRequest {
		t.Errorf("blank description: expected 400, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPost, "/api/ponto/occurrences", admin, map[string]string{"description": "fell ill"}); rec.Code != http.StatusCreated {
		t.Fatalf("occurrence: expected 201, got %d", rec.Code)
	}

	rec := srv.do(t, http.MethodGet, "/api/ponto/occurrences", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var resp struct {
		Occurrences []occurrenceResponse `json:"occurrences"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Occurrences) != 1 || resp.Occurrences[0].Username != "admin" || resp.Occurrences[0].RegisteredBy != "admin" {
		t.Errorf("unexpected occurrences %+v", resp.Occurrences)
	}
}

func TestAdminRoutesRequireManagement(t *testing.T) {
	srv := newTestServer(t, time.Now())
	admin := srv.login(t, "admin", "adminpassword")
	id, member := srv.registerApproved(t, admin, "ana")

	if rec := srv.do(t, http.MethodGet, "/api/admin/users", member, nil); rec.Code != http.StatusForbidden {
		t.Errorf("member on admin route: expected 403, got %d", rec.Code)
	}

	rec := srv.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/approve", id), admin, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("second approval: expected 200, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role-sector", id), admin, map[string]string{"role": "owner", "sector": "powertrain"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown role: expected 400, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, fmt.Sprintf("/api/admin/users/%d/toggle-active", id), admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200, got %d", rec.Code)
	}

	// deactivated accounts lose access with their existing token
	if rec := srv.do(t, http.MethodGet, "/api/me", member, nil); rec.Code != http.StatusForbidden {
		t.Errorf("inactive user: expected 403, got %d", rec.Code)
	}

	if rec := srv.do(t, http.MethodPost, "/api/admin/users/abc/approve", admin, nil); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: expected 400, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPost, "/api/admin/users/999/approve", admin, nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing user: expected 404, got %d", rec.Code)
	}
}

func TestOrderEndpoints(t *testing.T) {
	srv := newTestServer(t, time.Now())
	admin := srv.login(t, "admin", "adminpassword")

	rec := srv.do(t, http.MethodPost, "/api/orders", admin, map[string]string{"title": "Freio", "sector": "brakes_wheels"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var order models.ServiceOrder
	if err := json.Unmarshal(rec.Body.Bytes(), &order); err != nil {
		t.Fatal(err)
	}

	path := fmt.Sprintf("/api/orders/%d/status", order.ID)
	if rec := srv.do(t, http.MethodPatch, path, admin, map[string]string{"status": "completed"}); rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("open -> completed: expected 422, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodPatch, path, admin, map[string]string{"status": "in_progress"}); rec.Code != http.StatusOK {
		t.Errorf("open -> in_progress: expected 200, got %d", rec.Code)
	}

	_, member := srv.registerApproved(t, admin, "ana")
	if rec := srv.do(t, http.MethodGet, fmt.Sprintf("/api/orders/%d", order.ID), member, nil); rec.Code != http.StatusForbidden {
		t.Errorf("other sector: expected 403, got %d", rec.Code)
	}
}

func TestDocumentEndpoints(t *testing.T) {
	srv := newTestServer(t, time.Now())
	admin := srv.login(t, "admin", "adminpassword")
	_, member := srv.registerApproved(t, admin, "ana")

	rec := srv.do(t, http.MethodPost, "/api/docs", admin, map[string]string{"title": "Regras", "content": "# Regras"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create doc: expected 201, got %d", rec.Code)
	}
	var doc models.Document
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}

	path := fmt.Sprintf("/api/docs/%d", doc.ID)
	if rec := srv.do(t, http.MethodPut, path, member, map[string]string{"title": "x"}); rec.Code != http.StatusForbidden {
		t.Errorf("non-author edit: expected 403, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, path, member, nil); rec.Code != http.StatusOK {
		t.Errorf("read: expected 200, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/api/docs/999", member, nil); rec.Code != http.StatusNotFound {
		t.Errorf("missing doc: expected 404, got %d", rec.Code)
	}
}

func TestTeamStatusIsPublic(t *testing.T) {
	srv := newTestServer(t, time.Now())

	rec := srv.do(t, http.MethodGet, "/api/ponto/status", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := srv.do(t, http.MethodGet, "/health", "", nil); rec.Code != http.StatusOK {
		t.Errorf("health: expected 200, got %d", rec.Code)
	}
}

func TestMeShowsPendingApprovalsToManagement(t *testing.T) {
	srv := newTestServer(t, time.Now())
	admin := srv.login(t, "admin", "adminpassword")
	_, member := srv.registerApproved(t, admin, "ana")

	rec := srv.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "bia",
		"email":    "bia@example.com",
		"password": "secret123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", rec.Code)
	}

	var resp struct {
		ClockedIn bool   `json:"clocked_in"`
		Pending   *int64 `json:"pending_approvals"`
	}

	rec = srv.do(t, http.MethodGet, "/api/me", admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin me: expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pending == nil || *resp.Pending != 1 {
		t.Errorf("pending_approvals = %v, want 1", resp.Pending)
	}

	resp.Pending = nil
	rec = srv.do(t, http.MethodGet, "/api/me", member, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Pending != nil || resp.ClockedIn {
		t.Errorf("member me: pending = %v clocked_in = %v", resp.Pending, resp.ClockedIn)
	}
}
