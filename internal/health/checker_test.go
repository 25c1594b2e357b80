package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type memStatusCache struct {
	stored map[string]string
	ttl    time.Duration
}

func (m *memStatusCache) CacheSystemHealth(_ context.Context, h map[string]string, ttl time.Duration) error {
	m.stored, m.ttl = h, ttl
	return nil
}

func (m *memStatusCache) GetCachedSystemHealth(context.Context) (map[string]string, error) {
	if m.stored == nil {
		return nil, errors.New("miss")
	}
	return m.stored, nil
}

func ok(name string) Pinger {
	return PingerFunc{ServiceName: name, Fn: func(context.Context) error { return nil }}
}

func failing(name string) Pinger {
	return PingerFunc{ServiceName: name, Fn: func(context.Context) error { return errors.New("refused") }}
}

func TestHealthChecker_CheckAll(t *testing.T) {
	cache := &memStatusCache{}
	checker := NewHealthChecker(cache, 30*time.Second, logrus.New(), ok("postgresql"), failing("redis"))

	report := checker.CheckAll(context.Background())

	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, map[string]string{"postgresql": StatusHealthy, "redis": StatusUnhealthy}, report.Services)
	assert.Len(t, report.Details, 2)
	assert.Equal(t, "refused", report.Details[1].Error)
	assert.Equal(t, report.Services, cache.stored)
	assert.Equal(t, 30*time.Second, cache.ttl)
}

func TestHealthChecker_CheckUsesCache(t *testing.T) {
	calls := 0
	counting := PingerFunc{ServiceName: "postgresql", Fn: func(context.Context) error {
		calls++
		return nil
	}}
	checker := NewHealthChecker(&memStatusCache{}, time.Minute, logrus.New(), counting)

	first := checker.Check(context.Background())
	second := checker.Check(context.Background())

	assert.Equal(t, 1, calls)
	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, StatusHealthy, second.Status)
}

func TestHealthChecker_NoCache(t *testing.T) {
	checker := NewHealthChecker(nil, time.Minute, logrus.New(), ok("postgresql"))
	assert.Equal(t, StatusHealthy, checker.Check(context.Background()).Status)
}
