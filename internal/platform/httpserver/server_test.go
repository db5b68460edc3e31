package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	lifecycleservice "symposium/contexts/event-core/lifecycle-service"
	lifecycleentities "symposium/contexts/event-core/lifecycle-service/domain/entities"
	criteriaservice "symposium/contexts/evaluation/criteria-service"
	criteriaports "symposium/contexts/evaluation/criteria-service/ports"
	scoringengine "symposium/contexts/evaluation/scoring-engine"
)

func newTestServer() *Server {
	lifecycle := lifecycleservice.NewInMemoryModule(nil, nil)
	criteria := criteriaservice.NewInMemoryModule(nil, nil)
	scoring := scoringengine.NewInMemoryModule(nil, nil)
	return New(lifecycle, criteria, scoring, nil, ":0")
}

func postJSON(t *testing.T, server *Server, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func TestCreateEventAndTransition(t *testing.T) {
	server := newTestServer()
	server.lifecycle.Store.SetUser(lifecycleentities.User{UserID: "user-admin"})
	server.lifecycle.Store.SetRoleProfile(lifecycleentities.RoleProfile{
		ProfileID: "admin-1",
		UserID:    "user-admin",
		Kind:      lifecycleentities.RoleKindAdministrator,
	})

	rr := postJSON(t, server, "/api/events/v1/events", map[string]any{
		"name":             "annual symposium",
		"capacity":         50,
		"admin_profile_id": "admin-1",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		EventID string `json:"event_id"`
		State   string `json:"state"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response failed: %v", err)
	}
	if created.State != "pending" {
		t.Fatalf("new events must start pending, got %s", created.State)
	}

	rr = postJSON(t, server, "/api/events/v1/events/"+created.EventID+"/transition", map[string]any{
		"target": "approved",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestTransitionConflictReturns409(t *testing.T) {
	server := newTestServer()
	rr := postJSON(t, server, "/api/events/v1/events", map[string]any{
		"name": "annual symposium",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	var created struct {
		EventID string `json:"event_id"`
	}
	_ = json.Unmarshal(rr.Body.Bytes(), &created)

	rr = postJSON(t, server, "/api/events/v1/events/"+created.EventID+"/transition", map[string]any{
		"target": "finalized",
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for pending->finalized, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnknownEventReturns404(t *testing.T) {
	server := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/events/v1/events/missing", nil)
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestWeightCeilingViolationReturns422(t *testing.T) {
	server := newTestServer()
	server.criteria.Store.SetEventState(criteriaports.EventStateProjection{
		EventID: "event-1",
		State:   "approved",
	})

	rr := postJSON(t, server, "/api/criteria/v1/criteria", map[string]any{
		"event_id":    "event-1",
		"description": "originality",
		"weight":      80,
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = postJSON(t, server, "/api/criteria/v1/criteria", map[string]any{
		"event_id":    "event-1",
		"description": "rigor",
		"weight":      30,
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for ceiling overflow, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestOutOfRangeRatingReturns422(t *testing.T) {
	server := newTestServer()
	rr := postJSON(t, server, "/api/scores/v1/ratings", map[string]any{
		"evaluator_id":   "eval-1",
		"participant_id": "part-1",
		"criterion_id":   "crit-1",
		"value":          9,
	})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for out-of-range rating, got %d body=%s", rr.Code, rr.Body.String())
	}
}
