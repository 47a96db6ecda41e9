package control

import (
	"encoding/json"
	"net/http"

	"github.com/jfoltran/copyredis/internal/config"
	"github.com/jfoltran/copyredis/internal/metrics"
)

type handlers struct {
	collector *metrics.Collector
	cfg       config.Config
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.collector.Snapshot())
}

func (h *handlers) targets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.collector.Snapshot().Targets)
}

func (h *handlers) configHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, redactedConfig{
		Source:        h.cfg.Source.String(),
		Target:        redactedTargets(h.cfg.Target),
		Mode:          h.cfg.Mode.String(),
		DiscardRDB:    h.cfg.DiscardRDB,
		AOF:           h.cfg.AOF,
		BatchSize:     h.cfg.BatchSize,
		FlushInterval: h.cfg.FlushInterval.String(),
	})
}

func (h *handlers) logs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.collector.Logs())
}

// redactedConfig renders the running configuration without ever including a
// password, since this handler has no authentication of its own.
type redactedConfig struct {
	Source        string   `json:"source"`
	Target        []string `json:"target"`
	Mode          string   `json:"mode"`
	DiscardRDB    bool     `json:"discard_rdb"`
	AOF           bool     `json:"aof"`
	BatchSize     int      `json:"batch_size"`
	FlushInterval string   `json:"flush_interval"`
}

func redactedTargets(targets []config.Endpoint) []string {
	out := make([]string, len(targets))
	for i, t := range targets {
		out[i] = t.String()
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
