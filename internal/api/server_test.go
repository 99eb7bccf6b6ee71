package api

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/patrickford1/cta-tracker/internal/arrivals/bus"
	"github.com/patrickford1/cta-tracker/internal/arrivals/cache"
	"github.com/patrickford1/cta-tracker/internal/arrivals/rail"
	"github.com/patrickford1/cta-tracker/internal/common/logger"
)

type stubSource struct {
	trains cache.Snapshot[rail.Arrival]
	buses  cache.Snapshot[bus.Prediction]
}

func (s *stubSource) Trains() cache.Snapshot[rail.Arrival]  { return s.trains }
func (s *stubSource) Buses() cache.Snapshot[bus.Prediction] { return s.buses }

func testLogger() logger.Logger {
	return logger.New(logger.ParseLevel("error"), io.Discard)
}

func strPtr(s string) *string { return &s }

func emptySnapshots() *stubSource {
	return &stubSource{
		trains: cache.Snapshot[rail.Arrival]{Data: []rail.Arrival{}},
		buses:  cache.Snapshot[bus.Prediction]{Data: []bus.Prediction{}},
	}
}

func TestHealthz(t *testing.T) {
	server := NewServer(emptySnapshots(), testLogger())

	resp, err := server.App().Test(httptest.NewRequest("GET", "/healthz", nil))
	if err != nil {
		t.Fatalf("Test request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}
}

func TestDeparturesBeforeFirstCycle(t *testing.T) {
	server := NewServer(emptySnapshots(), testLogger())

	resp, err := server.App().Test(httptest.NewRequest("GET", "/api/departures", nil))
	if err != nil {
		t.Fatalf("Test request failed: %v", err)
	}
	// No data yet but no failure either: serve the empty snapshot.
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		UpdatedAt *time.Time     `json:"updated_at"`
		Data      []rail.Arrival `json:"data"`
		Error     *string        `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if body.UpdatedAt != nil || body.Error != nil || len(body.Data) != 0 {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestDeparturesNeverSucceededAndFailing(t *testing.T) {
	source := emptySnapshots()
	source.trains.Error = strPtr("CTA error 1: Bad Request")
	server := NewServer(source, testLogger())

	resp, err := server.App().Test(httptest.NewRequest("GET", "/api/departures", nil))
	if err != nil {
		t.Fatalf("Test request failed: %v", err)
	}
	if resp.StatusCode != 502 {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if body["detail"] != "CTA error 1: Bad Request" {
		t.Errorf("Unexpected detail: %q", body["detail"])
	}
}

func TestDeparturesStaleWithError(t *testing.T) {
	updated := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	source := emptySnapshots()
	source.trains = cache.Snapshot[rail.Arrival]{
		UpdatedAt: &updated,
		Data:      []rail.Arrival{{Route: "Brn", Destination: "Loop", Minutes: 5}},
		Error:     strPtr("upstream unavailable: connection refused"),
	}
	server := NewServer(source, testLogger())

	resp, err := server.App().Test(httptest.NewRequest("GET", "/api/departures", nil))
	if err != nil {
		t.Fatalf("Test request failed: %v", err)
	}
	// Stale data is still served; the error rides along.
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200 for stale data, got %d", resp.StatusCode)
	}

	var body struct {
		UpdatedAt *time.Time     `json:"updated_at"`
		Data      []rail.Arrival `json:"data"`
		Error     *string        `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Route != "Brn" {
		t.Errorf("Expected stale data served, got %+v", body.Data)
	}
	if body.Error == nil {
		t.Error("Expected error alongside stale data")
	}
}

func TestBusEndpoint(t *testing.T) {
	updated := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	minutes := 7
	source := emptySnapshots()
	source.buses = cache.Snapshot[bus.Prediction]{
		UpdatedAt: &updated,
		Data: []bus.Prediction{{
			Route: "9", Direction: "Southbound", Minutes: &minutes,
		}},
	}
	server := NewServer(source, testLogger())

	resp, err := server.App().Test(httptest.NewRequest("GET", "/api/bus", nil))
	if err != nil {
		t.Fatalf("Test request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("Expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Data []bus.Prediction `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(body.Data) != 1 || body.Data[0].Minutes == nil || *body.Data[0].Minutes != 7 {
		t.Errorf("Unexpected bus body: %+v", body.Data)
	}
}
