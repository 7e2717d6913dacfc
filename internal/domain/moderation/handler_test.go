package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/toolindex/toolindex-api/internal/middleware"
	"github.com/toolindex/toolindex-api/internal/pkg/jwt"
)

type httpFixture struct {
	*fixture
	router http.Handler
	jwt    *jwt.Service
}

func newHTTPFixture() *httpFixture {
	f := newFixture()
	jwtService := jwt.NewService("test-secret", time.Hour)
	handler := NewHandler(f.svc)
	return &httpFixture{
		fixture: f,
		router:  handler.Routes(middleware.Auth(jwtService), f.svc),
		jwt:     jwtService,
	}
}

func (h *httpFixture) do(t *testing.T, method, path string, body interface{}, userID int64, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != 0 {
		token, err := h.jwt.GenerateAccessToken(userID, role)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateReportEndpoint(t *testing.T) {
	h := newHTTPFixture()
	body := map[string]interface{}{"target_type": "tool", "target_id": 10, "reason": "spam"}

	rec := h.do(t, http.MethodPost, "/reports", body, 0, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: expected 401, got %d", rec.Code)
	}

	rec = h.do(t, http.MethodPost, "/reports", body, 1, "user")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body)
	}

	// Resubmission returns the open report, not a new one
	rec = h.do(t, http.MethodPost, "/reports", body, 1, "user")
	if rec.Code != http.StatusOK {
		t.Fatalf("duplicate: expected 200, got %d: %s", rec.Code, rec.Body)
	}

	// The report was queued as part of filing
	if len(h.store.queue) != 1 {
		t.Fatalf("expected 1 queue entry, got %d", len(h.store.queue))
	}
}

func TestCreateReportValidation(t *testing.T) {
	h := newHTTPFixture()
	rec := h.do(t, http.MethodPost, "/reports", map[string]interface{}{
		"target_type": "tool", "target_id": 10, "reason": "because",
	}, 1, "user")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad reason: expected 422, got %d", rec.Code)
	}
}

func TestRestrictedUserCannotReport(t *testing.T) {
	h := newHTTPFixture()
	if _, err := h.svc.ApplyAction(context.Background(), 3, &ApplyActionRequest{
		Kind: "user_ban", UserID: int64p(1), Reason: "fraud",
	}); err != nil {
		t.Fatal(err)
	}

	rec := h.do(t, http.MethodPost, "/reports", map[string]interface{}{
		"target_type": "tool", "target_id": 10, "reason": "spam",
	}, 1, "user")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("banned reporter: expected 403, got %d", rec.Code)
	}
}

func TestModeratorOnlyRoutes(t *testing.T) {
	h := newHTTPFixture()

	rec := h.do(t, http.MethodGet, "/queue", nil, 1, "user")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("user on queue: expected 403, got %d", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/queue", nil, 3, "moderator")
	if rec.Code != http.StatusOK {
		t.Fatalf("moderator on queue: expected 200, got %d", rec.Code)
	}

	rec = h.do(t, http.MethodGet, "/appeals", nil, 3, "moderator")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("moderator on appeals: expected 403, got %d", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/appeals", nil, 4, "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("admin on appeals: expected 200, got %d", rec.Code)
	}
}

func TestDecisionEndpointFlow(t *testing.T) {
	h := newHTTPFixture()

	rec := h.do(t, http.MethodPost, "/reports", map[string]interface{}{
		"target_type": "tool", "target_id": 10, "reason": "hate_speech",
	}, 1, "user")
	if rec.Code != http.StatusCreated {
		t.Fatalf("report: %d %s", rec.Code, rec.Body)
	}
	var created struct {
		Data Report `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	reportID := created.Data.ID

	var entryID int64
	for id := range h.store.queue {
		entryID = id
	}
	rec = h.do(t, http.MethodPost, fmt.Sprintf("/queue/%d/assign", entryID), nil, 3, "moderator")
	if rec.Code != http.StatusOK {
		t.Fatalf("assign: %d %s", rec.Code, rec.Body)
	}
	// Second claim loses
	rec = h.do(t, http.MethodPost, fmt.Sprintf("/queue/%d/assign", entryID), nil, 4, "admin")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second assign: expected 409, got %d", rec.Code)
	}

	rec = h.do(t, http.MethodPost, fmt.Sprintf("/reports/%d/decision", reportID), map[string]interface{}{
		"decision": "approve_action", "reasoning": "clear violation",
	}, 3, "moderator")
	if rec.Code != http.StatusCreated {
		t.Fatalf("decision: %d %s", rec.Code, rec.Body)
	}
	rec = h.do(t, http.MethodPost, fmt.Sprintf("/reports/%d/decision", reportID), map[string]interface{}{
		"decision": "reject_report", "reasoning": "revisit",
	}, 3, "moderator")
	if rec.Code != http.StatusConflict {
		t.Fatalf("second decision: expected 409, got %d", rec.Code)
	}
}

func TestStatusEndpointVisibility(t *testing.T) {
	h := newHTTPFixture()

	rec := h.do(t, http.MethodGet, "/users/2/status", nil, 1, "user")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("peeking at another user: expected 403, got %d", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/users/2/status", nil, 2, "user")
	if rec.Code != http.StatusOK {
		t.Fatalf("own status: expected 200, got %d", rec.Code)
	}
	rec = h.do(t, http.MethodGet, "/users/2/status", nil, 3, "moderator")
	if rec.Code != http.StatusOK {
		t.Fatalf("moderator: expected 200, got %d", rec.Code)
	}
}

func TestAppealEndpointReachableWhileBanned(t *testing.T) {
	h := newHTTPFixture()
	action, err := h.svc.ApplyAction(context.Background(), 3, &ApplyActionRequest{
		Kind: "user_ban", UserID: int64p(2), Reason: "fraud",
	})
	if err != nil {
		t.Fatal(err)
	}

	rec := h.do(t, http.MethodPost, fmt.Sprintf("/actions/%d/appeal", action.ID), map[string]interface{}{
		"reason": "mistaken identity",
	}, 2, "user")
	if rec.Code != http.StatusCreated {
		t.Fatalf("banned user filing appeal: expected 201, got %d: %s", rec.Code, rec.Body)
	}

	rec = h.do(t, http.MethodPost, fmt.Sprintf("/actions/%d/appeal", action.ID), map[string]interface{}{
		"reason": "again",
	}, 1, "user")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-target appellant: expected 403, got %d", rec.Code)
	}
}
