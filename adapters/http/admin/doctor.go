package admin

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"
)

// DoctorResponse represents the system health check response.
type DoctorResponse struct {
	Status     string         `json:"status"` // "healthy", "degraded", "unhealthy"
	Timestamp  string         `json:"timestamp"`
	Version    string         `json:"version"`
	Checks     []HealthCheck  `json:"checks"`
	System     SystemInfo     `json:"system"`
	Statistics StatisticsInfo `json:"statistics"`
}

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "pass", "warn", "fail"
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// SystemInfo represents runtime information.
type SystemInfo struct {
	GoVersion    string `json:"go_version"`
	NumCPU       int    `json:"num_cpu"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     string `json:"mem_alloc"`
	MemSys       string `json:"mem_sys"`
	Uptime       string `json:"uptime,omitempty"`
}

// StatisticsInfo summarizes subscriptions by tier and, for active callers,
// how close each is to its quota this period.
type StatisticsInfo struct {
	TotalSubscriptions int            `json:"total_subscriptions"`
	ActiveByTier       map[string]int `json:"active_by_tier"`
	Inactive           int            `json:"inactive"`
	QuotaPressure      map[string]int `json:"quota_pressure"`
	CallsThisPeriod    int64          `json:"calls_this_period"`
}

var startTime = time.Now()

// Doctor performs a comprehensive system health check.
//
//	@Summary		System health check
//	@Description	Checks storage dependencies and reports subscription statistics
//	@Tags			Admin - System
//	@Produce		json
//	@Success		200	{object}	DoctorResponse	"Health check results"
//	@Failure		503	{object}	DoctorResponse	"A dependency is failing"
//	@Security		AdminAuth
//	@Router			/admin/doctor [get]
func (h *Handler) Doctor(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	version := h.version
	if version == "" {
		version = "dev"
	}
	response := DoctorResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version,
		Checks:    h.runChecks(ctx),
	}
	response.Checks = append(response.Checks, checkMemory())

	hasWarn, hasFail := false, false
	for _, check := range response.Checks {
		switch check.Status {
		case "warn":
			hasWarn = true
		case "fail":
			hasFail = true
		}
	}
	if hasFail {
		response.Status = "unhealthy"
	} else if hasWarn {
		response.Status = "degraded"
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	response.System = SystemInfo{
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
		MemAlloc:     formatBytes(memStats.Alloc),
		MemSys:       formatBytes(memStats.Sys),
		Uptime:       time.Since(startTime).Round(time.Second).String(),
	}

	response.Statistics = h.statistics(ctx)

	statusCode := http.StatusOK
	if response.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, response)
}

func (h *Handler) statistics(ctx context.Context) StatisticsInfo {
	stats := StatisticsInfo{
		ActiveByTier:  map[string]int{},
		QuotaPressure: map[string]int{},
	}
	subs, err := h.engine.ListSubscriptions(ctx)
	if err != nil {
		h.logger.Warn().Err(err).Msg("doctor: list subscriptions failed")
		return stats
	}

	stats.TotalSubscriptions = len(subs)
	for _, s := range subs {
		if !s.IsActive() {
			stats.Inactive++
			continue
		}
		stats.ActiveByTier[string(s.Tier)]++

		summary, err := h.engine.UsageSummary(ctx, s.CallerID)
		if err != nil {
			continue
		}
		stats.CallsThisPeriod += summary.CallsUsed
		stats.QuotaPressure[summary.WarningLevel.String()]++
	}
	return stats
}

func (h *Handler) runChecks(ctx context.Context) []HealthCheck {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]HealthCheck, 0, len(names)+1)
	for _, name := range names {
		check := HealthCheck{Name: name, Status: "pass", Message: "reachable"}
		start := time.Now()
		err := h.checks[name].HealthCheck(ctx)
		check.Latency = time.Since(start).String()
		if err != nil {
			check.Status = "fail"
			check.Message = fmt.Sprintf("%s check failed: %v", name, err)
		}
		out = append(out, check)
	}
	return out
}

func checkMemory() HealthCheck {
	check := HealthCheck{
		Name:   "memory",
		Status: "pass",
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	// Warn above 500MB.
	if memStats.Alloc > 500*1024*1024 {
		check.Status = "warn"
		check.Message = fmt.Sprintf("High memory usage: %s", formatBytes(memStats.Alloc))
	} else {
		check.Message = fmt.Sprintf("Memory usage: %s", formatBytes(memStats.Alloc))
	}

	return check
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
