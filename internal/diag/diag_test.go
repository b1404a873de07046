package diag

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/matemat13/ha-s-charge/internal/charger"
)

func TestHealthzReportsHealthy(t *testing.T) {
	s := New("127.0.0.1:0", log.New(os.Stderr, "[diag-test] ", 0), charger.NewState("ABC123"))
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", body["status"])
	}
}

func TestStateReturnsUninitializedSnapshotBeforeUpdates(t *testing.T) {
	s := New("127.0.0.1:0", log.New(os.Stderr, "[diag-test] ", 0), charger.NewState("ABC123"))
	ts := httptest.NewServer(s.router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/state")
	if err != nil {
		t.Fatalf("GET /state: %v", err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["initialized"] != false {
		t.Errorf("initialized = %v, want false", body["initialized"])
	}
}
