package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"
)

type RouteLeg struct {
	DistanceMeters  int
	DurationMinutes int
	Cost            float64
}

// --------- In-memory cache per (mode, A, B) pair ---------

type routePairKey struct {
	Mode string
	A    string // quantized "lat,lng"
	B    string
}

type routePairEntry struct {
	Leg       RouteLeg
	ExpiresAt time.Time
}

type RoutePairCache interface {
	Get(k routePairKey) (RouteLeg, bool)
	Set(k routePairKey, v RouteLeg, ttl time.Duration)
}

type inMemoryRouteCache struct {
	mu    sync.RWMutex
	store map[routePairKey]routePairEntry
}

func NewInMemoryRouteCache() RoutePairCache {
	return &inMemoryRouteCache{store: make(map[routePairKey]routePairEntry)}
}

func (c *inMemoryRouteCache) Get(k routePairKey) (RouteLeg, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.store[k]
	if !ok || time.Now().After(it.ExpiresAt) {
		return RouteLeg{}, false
	}
	return it.Leg, true
}

func (c *inMemoryRouteCache) Set(k routePairKey, v RouteLeg, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[k] = routePairEntry{Leg: v, ExpiresAt: time.Now().Add(ttl)}
}

// -------------- Mapbox Directions client ---------------

type RouteClientInterface interface {
	// Leg computes one transit leg between two coordinate pairs.
	// mode is a request-level mobility style ("walking", "transit",
	// "driving").
	Leg(ctx context.Context, fromLat, fromLng, toLat, toLng float64, mode string) (RouteLeg, error)
}

type MapboxRouteClient struct {
	HTTP        *http.Client
	AccessToken string
	Cache       RoutePairCache
	DefaultTTL  time.Duration
}

func NewMapboxRouteClient(cache RoutePairCache) RouteClientInterface {
	return &MapboxRouteClient{
		HTTP:        &http.Client{Timeout: 5 * time.Second},
		AccessToken: os.Getenv("MAPBOX_ACCESS_TOKEN"),
		Cache:       cache,
		DefaultTTL:  7 * 24 * time.Hour,
	}
}

// mapboxProfile maps a mobility style onto a routing profile. Mapbox
// has no public-transit profile, so "transit" routes as driving and the
// fare model below compensates.
func mapboxProfile(mode string) string {
	switch mode {
	case "walking":
		return "walking"
	default:
		return "driving"
	}
}

func (c *MapboxRouteClient) Leg(ctx context.Context, fromLat, fromLng, toLat, toLng float64, mode string) (RouteLeg, error) {
	if c.AccessToken == "" {
		return RouteLeg{}, fmt.Errorf("mapbox access token is empty")
	}

	k := routePairKey{
		Mode: mode,
		A:    quantize(fromLat, fromLng),
		B:    quantize(toLat, toLng),
	}
	if v, ok := c.Cache.Get(k); ok {
		return v, nil
	}

	profile := mapboxProfile(mode)
	coordStr := fmt.Sprintf("%f,%f;%f,%f", fromLng, fromLat, toLng, toLat)
	u := url.URL{
		Scheme: "https",
		Host:   "api.mapbox.com",
		Path:   fmt.Sprintf("/directions/v5/mapbox/%s/%s", profile, coordStr),
	}
	q := url.Values{}
	q.Set("overview", "false")
	q.Set("access_token", c.AccessToken)
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return RouteLeg{}, fmt.Errorf("mapbox directions http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return RouteLeg{}, fmt.Errorf("mapbox directions bad status: %s", resp.Status)
	}

	var payload struct {
		Routes []struct {
			Distance float64 `json:"distance"`
			Duration float64 `json:"duration"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return RouteLeg{}, fmt.Errorf("mapbox decode: %w", err)
	}
	if len(payload.Routes) == 0 {
		return RouteLeg{}, fmt.Errorf("mapbox directions returned no route")
	}

	leg := RouteLeg{
		DistanceMeters:  int(payload.Routes[0].Distance + 0.5),
		DurationMinutes: int(payload.Routes[0].Duration/60 + 0.5),
		Cost:            estimateLegCost(mode, payload.Routes[0].Distance),
	}
	c.Cache.Set(k, leg, c.DefaultTTL)
	return leg, nil
}

// estimateLegCost is a coarse fare model in destination-currency units:
// walking is free, public transit is a flat fare, driving is metered.
func estimateLegCost(mode string, distanceMeters float64) float64 {
	switch mode {
	case "walking":
		return 0
	case "driving":
		return 3.0 + 1.2*distanceMeters/1000
	default:
		return 2.0
	}
}

func quantize(lat, lng float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lng)
}
