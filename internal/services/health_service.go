package services

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/jgtann/gdp-dashboard/internal/infrastructure"
)

// ReadinessProbe reports nil once the service can answer queries
type ReadinessProbe func(ctx context.Context) error

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	probe     ReadinessProbe
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health states
const (
	StatusOK       = "ok"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
	StatusAlive    = "alive"
)

// NewHealthService creates a health service. A nil probe is always ready.
func NewHealthService(version, buildTime, gitCommit string, probe ReadinessProbe, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		gitCommit: gitCommit,
		probe:     probe,
		startTime: time.Now(),
		logger:    infrastructure.WithComponent(logger, "health_service"),
	}
}

// HealthCheck reports that the process is serving
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusOK,
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck runs the probe and reports the data service state
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	data := ServiceHealth{Status: StatusReady, Message: "dataset loaded"}
	if hs.probe != nil {
		if err := hs.probe(ctx); err != nil {
			data = ServiceHealth{Status: StatusNotReady, Message: err.Error()}
			hs.logger.DebugContext(ctx, "readiness probe failed", slog.String("error", err.Error()))
		}
	}

	status := StatusReady
	if data.Status != StatusReady {
		status = StatusNotReady
	}
	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  map[string]ServiceHealth{"data": data},
	}
}

// Ready reports whether ReadinessCheck would succeed
func (hs *HealthService) Ready(ctx context.Context) bool {
	return hs.ReadinessCheck(ctx).Status == StatusReady
}

// LivenessCheck returns liveness status with runtime details
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":    hs.version,
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"uptime":     time.Since(hs.startTime).Seconds(),
		"start_time": hs.startTime.Format(time.RFC3339),
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" {
		result["git_commit"] = hs.gitCommit
	}
	return result
}
