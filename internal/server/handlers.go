package server

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type memoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

type cpuStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

type cacheStats struct {
	Entries int `json:"entries"`
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
}

type connectionStats struct {
	Open int `json:"open"`
}

type statsResponse struct {
	Uptime        string          `json:"uptime"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	StartTime     time.Time       `json:"start_time"`
	CPU           cpuStats        `json:"cpu"`
	Memory        memoryStats     `json:"memory"`
	Cache         cacheStats      `json:"cache"`
	Connections   connectionStats `json:"connections"`
}

// handleHealth is a liveness probe: it never touches the resolver client or
// the document cache, so it stays cheap and fast even under load.
func (s *WSServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, statusResponse{Status: "ok", Message: "did-cache-server is running"})
}

// handleStats reports process and cache metrics for operators. CPU/memory
// come from gopsutil the same way the teacher's health handler gathers
// them; cache and connection counts come from the resolver client and this
// server's own connection tracking.
func (s *WSServer) handleStats(c *gin.Context) {
	uptime := time.Since(s.startTime)

	mem_ := memoryStats{}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		mem_.TotalMB = float64(vmStat.Total) / 1024 / 1024
		mem_.FreeMB = float64(vmStat.Available) / 1024 / 1024
		mem_.UsedMB = float64(vmStat.Used) / 1024 / 1024
		mem_.UsedPercent = vmStat.UsedPercent
	}

	cpu_ := cpuStats{NumCPU: runtime.NumCPU()}
	if pct, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(pct) > 0 {
		cpu_.UsedPercent = pct[0]
		cpu_.IdlePercent = 100.0 - pct[0]
	}

	entries, hits, misses := s.client.CacheStats()

	s.connsMu.Lock()
	openConns := len(s.conns)
	s.connsMu.Unlock()

	c.JSON(http.StatusOK, statsResponse{
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     s.startTime,
		CPU:           cpu_,
		Memory:        mem_,
		Cache:         cacheStats{Entries: entries, Hits: hits, Misses: misses},
		Connections:   connectionStats{Open: openConns},
	})
}
