package health

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// Pinger is one dependency the checker probes.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// StatusCache stores the last report so probes are not run on every request.
type StatusCache interface {
	CacheSystemHealth(ctx context.Context, health map[string]string, expiration time.Duration) error
	GetCachedSystemHealth(ctx context.Context) (map[string]string, error)
}

// HealthChecker manages health checks for all services
type HealthChecker struct {
	pingers []Pinger
	cache   StatusCache
	ttl     time.Duration
	logger  *logrus.Logger
	started time.Time
}

// NewHealthChecker probes pingers; cache may be nil.
func NewHealthChecker(cache StatusCache, ttl time.Duration, logger *logrus.Logger, pingers ...Pinger) *HealthChecker {
	return &HealthChecker{
		pingers: pingers,
		cache:   cache,
		ttl:     ttl,
		logger:  logger,
		started: time.Now(),
	}
}

// ServiceHealth represents the health status of a service
type ServiceHealth struct {
	Name         string `json:"name"`
	Status       string `json:"status"`
	ResponseTime int    `json:"response_time_ms"`
	Error        string `json:"error,omitempty"`
}

// OverallHealth represents the overall system health
type OverallHealth struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Details  []ServiceHealth   `json:"details,omitempty"`
	Uptime   string            `json:"uptime"`
	Cached   bool              `json:"cached"`
}

func (h *HealthChecker) check(ctx context.Context, p Pinger) ServiceHealth {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	start := time.Now()
	err := p.Ping(ctx)
	result := ServiceHealth{
		Name:         p.Name(),
		Status:       StatusHealthy,
		ResponseTime: int(time.Since(start).Milliseconds()),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
		h.logger.WithError(err).WithField("service", p.Name()).Error("Health check failed")
	}
	return result
}

// CheckAll performs health checks on all services
func (h *HealthChecker) CheckAll(ctx context.Context) OverallHealth {
	overall := OverallHealth{
		Status:   StatusHealthy,
		Services: make(map[string]string, len(h.pingers)),
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}

	for _, p := range h.pingers {
		result := h.check(ctx, p)
		overall.Details = append(overall.Details, result)
		overall.Services[result.Name] = result.Status
		if result.Status != StatusHealthy {
			overall.Status = StatusUnhealthy
		}
	}

	if h.cache != nil {
		if err := h.cache.CacheSystemHealth(ctx, overall.Services, h.ttl); err != nil {
			h.logger.WithError(err).Warn("Failed to cache health status")
		}
	}

	return overall
}

// Check serves the cached report when one exists, otherwise probes.
func (h *HealthChecker) Check(ctx context.Context) OverallHealth {
	if h.cache != nil {
		if cached, err := h.cache.GetCachedSystemHealth(ctx); err == nil && len(cached) > 0 {
			overall := OverallHealth{
				Status:   StatusHealthy,
				Services: cached,
				Uptime:   time.Since(h.started).Round(time.Second).String(),
				Cached:   true,
			}
			for _, status := range cached {
				if status != StatusHealthy {
					overall.Status = StatusUnhealthy
				}
			}
			return overall
		}
	}
	return h.CheckAll(ctx)
}

// PeriodicHealthCheck runs health checks periodically
func (h *HealthChecker) PeriodicHealthCheck(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			health := h.CheckAll(ctx)
			h.logger.WithField("status", health.Status).Debug("Periodic health check completed")
		}
	}
}

// PingerFunc adapts a function to Pinger.
type PingerFunc struct {
	ServiceName string
	Fn          func(ctx context.Context) error
}

func (p PingerFunc) Name() string                   { return p.ServiceName }
func (p PingerFunc) Ping(ctx context.Context) error { return p.Fn(ctx) }
