package control

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfoltran/copyredis/internal/config"
	"github.com/jfoltran/copyredis/internal/metrics"
)

func TestHandlerStatus(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()
	c.SetPhase("streaming")

	h := &handlers{collector: c}
	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	rec := httptest.NewRecorder()

	h.status(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Phase != "streaming" {
		t.Errorf("Phase = %q, want streaming", snap.Phase)
	}
}

func TestHandlerTargets(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()
	c.SetTargets([]string{"a:1", "b:1"})
	c.TargetSyncing("a:1")

	h := &handlers{collector: c}
	req := httptest.NewRequest("GET", "/api/v1/targets", nil)
	rec := httptest.NewRecorder()

	h.targets(rec, req)

	var targets []metrics.TargetProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &targets); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(targets))
	}
	if targets[0].Status != metrics.TargetSyncing {
		t.Errorf("targets[0].Status = %q, want syncing", targets[0].Status)
	}
}

func TestHandlerConfigRedactsPasswords(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()

	cfg := config.Config{
		Source: config.Endpoint{Host: "src", Port: 6379, User: "default", Password: "secret123"},
		Target: []config.Endpoint{{Host: "dst", Port: 6400, Password: "dest_secret"}},
		Mode:   config.ModeStandalone,
	}

	h := &handlers{collector: c, cfg: cfg}
	req := httptest.NewRequest("GET", "/api/v1/config", nil)
	rec := httptest.NewRecorder()

	h.configHandler(rec, req)

	body := rec.Body.String()
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}
	if strings.Contains(body, "secret123") || strings.Contains(body, "dest_secret") {
		t.Error("response should not contain passwords")
	}
	if !strings.Contains(body, "src") || !strings.Contains(body, "dst") {
		t.Error("response should contain host names")
	}
}

func TestHandlerLogs(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()
	c.AddLog(metrics.LogEntry{Time: time.Now(), Level: "info", Message: "test log"})

	h := &handlers{collector: c}
	req := httptest.NewRequest("GET", "/api/v1/logs", nil)
	rec := httptest.NewRecorder()

	h.logs(rec, req)

	var logs []metrics.LogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if logs[0].Message != "test log" {
		t.Errorf("log message = %q, want 'test log'", logs[0].Message)
	}
}

func TestHandlerCORS(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()

	h := &handlers{collector: c}
	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	rec := httptest.NewRecorder()

	h.status(rec, req)

	if cors := rec.Header().Get("Access-Control-Allow-Origin"); cors != "*" {
		t.Errorf("CORS header = %q, want *", cors)
	}
}
