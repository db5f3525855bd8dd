package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEstimateLegCost(t *testing.T) {
	assert.InDelta(t, 0.0, estimateLegCost("walking", 5000), 1e-9)
	assert.InDelta(t, 2.0, estimateLegCost("transit", 5000), 1e-9)
	assert.InDelta(t, 2.0, estimateLegCost("", 5000), 1e-9)
	// 3.0 base + 1.2 per km.
	assert.InDelta(t, 9.0, estimateLegCost("driving", 5000), 1e-9)
}

func TestMapboxProfile(t *testing.T) {
	assert.Equal(t, "walking", mapboxProfile("walking"))
	assert.Equal(t, "driving", mapboxProfile("driving"))
	assert.Equal(t, "driving", mapboxProfile("transit"))
}

func TestRouteCacheExpiry(t *testing.T) {
	c := NewInMemoryRouteCache()
	k := routePairKey{Mode: "walking", A: "48.8600,2.3300", B: "48.8500,2.3200"}

	_, ok := c.Get(k)
	assert.False(t, ok)

	c.Set(k, RouteLeg{DistanceMeters: 1200}, time.Minute)
	got, ok := c.Get(k)
	assert.True(t, ok)
	assert.Equal(t, 1200, got.DistanceMeters)

	c.Set(k, RouteLeg{DistanceMeters: 1200}, -time.Second)
	_, ok = c.Get(k)
	assert.False(t, ok)
}
