package server

import (
	"net/http"
	"time"

	"github.com/agbru/fibapi/internal/format"
	appmetrics "github.com/agbru/fibapi/internal/metrics"
	"github.com/agbru/fibapi/internal/sysmon"
)

type cacheHealth struct {
	Entries int    `json:"entries"`
	Limit   int    `json:"limit"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Steps   uint64 `json:"steps"`
}

type healthResponse struct {
	Status        string                     `json:"status"`
	Version       string                     `json:"version,omitempty"`
	Uptime        string                     `json:"uptime"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
	Cache         cacheHealth                `json:"cache"`
	HeapInUse     string                     `json:"heap_in_use"`
	Runtime       appmetrics.RuntimeSnapshot `json:"runtime"`
	System        sysmon.Stats               `json:"system"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(s.startTime)
	rt := s.runtime.Snapshot()
	resp := healthResponse{
		Status:        "ok",
		Version:       s.cfg.Version,
		Uptime:        format.FormatExecutionDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		HeapInUse:     format.FormatBytes(rt.HeapAllocBytes),
		Runtime:       rt,
		System:        sysmon.Sample(r.Context()),
	}
	if s.engine != nil {
		st := s.engine.Stats()
		resp.Cache = cacheHealth{
			Entries: st.Cached,
			Limit:   s.engine.CacheLimit(),
			Hits:    st.Hits,
			Misses:  st.Misses,
			Steps:   st.Steps,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
