package healthprobe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth_AlwaysOK(t *testing.T) {
	t.Parallel()

	h := New()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	h.Health()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
}

func TestReady_NotReadyBeforeStartup(t *testing.T) {
	t.Parallel()

	h := New()

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready()(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before startup, got %d", rec.Code)
	}
}

func TestReady_AllComponentsReady(t *testing.T) {
	t.Parallel()

	h := New()
	h.SetComponentReady("feed", true)
	h.SetComponentReady("loop", true)

	if !h.IsReady() {
		t.Fatal("expected ready with all components ready")
	}

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()

	h.Ready()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if !resp.Components["feed"] || !resp.Components["loop"] {
		t.Errorf("expected per-component readiness in response, got %+v", resp.Components)
	}
}

func TestReady_OneComponentDownGates(t *testing.T) {
	t.Parallel()

	h := New()
	h.SetComponentReady("feed", true)
	h.SetComponentReady("loop", false)

	if h.IsReady() {
		t.Error("expected not ready with one component down")
	}

	h.SetComponentReady("loop", true)

	if !h.IsReady() {
		t.Error("expected ready after the component recovered")
	}
}

func TestSetReady_WholeProcess(t *testing.T) {
	t.Parallel()

	h := New()
	h.SetReady(true)

	if !h.IsReady() {
		t.Error("expected ready after SetReady(true)")
	}

	h.SetReady(false)

	if h.IsReady() {
		t.Error("expected not ready after SetReady(false)")
	}
}
