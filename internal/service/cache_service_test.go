package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type brokenCache struct{}

func (brokenCache) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("connection refused")
}

func (brokenCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("connection refused")
}

func (brokenCache) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("connection refused")
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	var dest []string
	assert.False(t, nilSvc.Get(context.Background(), "k", &dest))
	nilSvc.Set(context.Background(), "k", dest, 0)
	nilSvc.Invalidate(context.Background(), "k*")

	off := NewCacheService(newMemoryCache(), nil, 0, nil, false)
	assert.False(t, off.Enabled())
}

func TestCacheServiceRecordsHitsAndMisses(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCache(), metrics, time.Minute, nil, true)
	ctx := context.Background()

	var dest []int
	assert.False(t, svc.Get(ctx, "catalog:status:approved", &dest))
	svc.Set(ctx, "catalog:status:approved", []int{10, 3, 1}, 0)
	assert.True(t, svc.Get(ctx, "catalog:status:approved", &dest))
	assert.Equal(t, []int{10, 3, 1}, dest)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.0001)
}

func TestCacheServiceSwallowsBackendFailures(t *testing.T) {
	svc := NewCacheService(brokenCache{}, nil, 0, nil, true)
	var dest []int
	assert.False(t, svc.Get(context.Background(), "k", &dest))
	svc.Set(context.Background(), "k", dest, 0)
	svc.Invalidate(context.Background(), "k*")
}
