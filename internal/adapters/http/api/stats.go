package api

import (
	"net/http"
	"strings"
	"time"
)

// StatsProvider exposes service counters and limits.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves GET /stats.
type StatsHandler struct {
	statsProvider StatsProvider
	startedAt     time.Time
}

// NewStatsHandler creates a stats handler; uptime is counted from now.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider, startedAt: time.Now()}
}

// HandleStats writes the provider's stats plus uptimeSeconds. A fields query
// parameter (comma separated) narrows the response to those keys.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.statsProvider.GetStats()
	out := make(map[string]interface{}, len(stats)+1)
	for k, v := range stats {
		out[k] = v
	}
	out["uptimeSeconds"] = int64(time.Since(h.startedAt).Seconds())

	if raw := r.URL.Query().Get("fields"); raw != "" {
		picked := make(map[string]interface{})
		for _, f := range strings.Split(raw, ",") {
			if v, ok := out[strings.TrimSpace(f)]; ok {
				picked[strings.TrimSpace(f)] = v
			}
		}
		out = picked
	}
	writeJSON(w, http.StatusOK, out)
}
