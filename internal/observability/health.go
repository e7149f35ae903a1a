package observability

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"

	"soup_web/internal/config"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck represents a health check function
type HealthCheck func(ctx context.Context) (HealthStatus, string, error)

// HealthConfig holds configuration for health check endpoints
type HealthConfig struct {
	// Logger for structured logging
	Logger *slog.Logger

	// Checks run concurrently on /health and /ready.
	Checks map[string]HealthCheck

	// Optional lists checks whose failure only degrades the service. The
	// external API being down still lets pages render anonymously.
	Optional map[string]bool

	// Timeout for individual checks
	CheckTimeout time.Duration

	// Include system info in response
	IncludeSystemInfo bool

	// Version reported on /health
	Version string
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    HealthStatus           `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Uptime    string                 `json:"uptime,omitempty"`
	Version   string                 `json:"version,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	System    *SystemInfo            `json:"system,omitempty"`
}

// ReadinessResponse is the /ready body.
type ReadinessResponse struct {
	Ready     bool                   `json:"ready"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents the result of a single health check
type CheckResult struct {
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Latency string       `json:"latency,omitempty"`
}

// SystemInfo contains system-level information
type SystemInfo struct {
	Goroutines  int    `json:"goroutines"`
	MemoryAlloc uint64 `json:"memory_alloc_mb"`
	MemorySys   uint64 `json:"memory_sys_mb"`
	NumCPU      int    `json:"num_cpu"`
	NumGC       uint32 `json:"num_gc"`
}

var startTime = time.Now()

// DefaultHealthConfig returns a default health configuration
func DefaultHealthConfig() *HealthConfig {
	return &HealthConfig{
		Checks:            make(map[string]HealthCheck),
		Optional:          make(map[string]bool),
		CheckTimeout:      3 * time.Second,
		IncludeSystemInfo: true,
	}
}

// Register adds a check. Optional checks degrade instead of failing.
func (c *HealthConfig) Register(name string, check HealthCheck, optional bool) {
	if c.Checks == nil {
		c.Checks = make(map[string]HealthCheck)
	}
	if c.Optional == nil {
		c.Optional = make(map[string]bool)
	}
	c.Checks[name] = check
	c.Optional[name] = optional
}

// HealthHandler returns an HTTP handler for comprehensive health checks
// Endpoint: GET /health
func HealthHandler(cfg *HealthConfig) http.HandlerFunc {
	if cfg == nil {
		cfg = DefaultHealthConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), cfg.CheckTimeout)
		defer cancel()

		response := &HealthResponse{
			Status:    StatusHealthy,
			Timestamp: time.Now().Format(time.RFC3339),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			Version:   cfg.Version,
			Checks:    runChecks(ctx, cfg.Checks),
		}
		if cfg.IncludeSystemInfo {
			response.System = getSystemInfo()
		}

		for name, result := range response.Checks {
			response.Status = worse(response.Status, effective(result.Status, cfg.Optional[name]))
		}

		logger.Debug("health check performed",
			"status", response.Status,
			"checks_count", len(response.Checks),
		)

		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		if err := config.RespondJSON(w, statusCode, response); err != nil {
			logger.Error("failed to write health response", "error", err)
		}
	}
}

// ReadinessHandler returns an HTTP handler for readiness checks
// Endpoint: GET /ready - Used by load balancers to determine if app can accept traffic
func ReadinessHandler(cfg *HealthConfig) http.HandlerFunc {
	if cfg == nil {
		cfg = DefaultHealthConfig()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), cfg.CheckTimeout)
		defer cancel()

		checks := runChecks(ctx, cfg.Checks)
		ready := true
		for name, result := range checks {
			if effective(result.Status, cfg.Optional[name]) == StatusUnhealthy {
				ready = false
			}
		}

		statusCode := http.StatusOK
		if !ready {
			statusCode = http.StatusServiceUnavailable
			logger.Warn("readiness check failed", "failing", failing(checks))
		}
		_ = config.RespondJSON(w, statusCode, ReadinessResponse{
			Ready:     ready,
			Timestamp: time.Now().Format(time.RFC3339),
			Checks:    checks,
		})
	}
}

// LivenessHandler returns an HTTP handler for liveness checks
// Endpoint: GET /live-check - Used by orchestrators to determine if app is alive
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = config.RespondJSON(w, http.StatusOK, map[string]any{
			"alive":     true,
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startTime).Round(time.Second).String(),
		})
	}
}

// PingCheck adapts a ping function (redis, the SouP API) to a HealthCheck.
func PingCheck(name string, ping func(context.Context) error) HealthCheck {
	return func(ctx context.Context) (HealthStatus, string, error) {
		if err := ping(ctx); err != nil {
			return StatusUnhealthy, name + " unreachable", err
		}
		return StatusHealthy, name + " is healthy", nil
	}
}

// runChecks executes every check concurrently, each bounded by ctx.
func runChecks(ctx context.Context, checks map[string]HealthCheck) map[string]CheckResult {
	results := make(map[string]CheckResult, len(checks))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := runHealthCheck(ctx, check)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results
}

// runHealthCheck executes a custom health check with timeout
func runHealthCheck(ctx context.Context, check HealthCheck) CheckResult {
	start := time.Now()

	resultChan := make(chan CheckResult, 1)
	go func() {
		status, message, err := check(ctx)
		result := CheckResult{
			Status:  status,
			Message: message,
			Latency: time.Since(start).String(),
		}
		if err != nil {
			result.Error = err.Error()
			if result.Status == StatusHealthy || result.Status == "" {
				result.Status = StatusUnhealthy
			}
		}
		resultChan <- result
	}()

	select {
	case result := <-resultChan:
		return result
	case <-ctx.Done():
		return CheckResult{
			Status:  StatusUnhealthy,
			Message: "Health check timed out",
			Error:   ctx.Err().Error(),
			Latency: time.Since(start).String(),
		}
	}
}

func effective(status HealthStatus, optional bool) HealthStatus {
	if optional && status == StatusUnhealthy {
		return StatusDegraded
	}
	return status
}

func worse(a, b HealthStatus) HealthStatus {
	rank := map[HealthStatus]int{StatusHealthy: 0, StatusDegraded: 1, StatusUnhealthy: 2}
	if rank[b] > rank[a] {
		return b
	}
	return a
}

func failing(checks map[string]CheckResult) []string {
	var names []string
	for name, c := range checks {
		if c.Status == StatusUnhealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// getSystemInfo retrieves system information
func getSystemInfo() *SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemInfo{
		Goroutines:  runtime.NumGoroutine(),
		MemoryAlloc: m.Alloc / 1024 / 1024,
		MemorySys:   m.Sys / 1024 / 1024,
		NumCPU:      runtime.NumCPU(),
		NumGC:       m.NumGC,
	}
}
