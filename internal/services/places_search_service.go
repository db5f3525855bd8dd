package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"
)

type PlaceSearchResult struct {
	Name        string
	Latitude    float64
	Longitude   float64
	ExternalID  string
	PhotoRef    string
	Rating      float64
	ReviewCount int
}

type PlaceSearchClientInterface interface {
	// SearchBest returns the best match for a free-text query, or
	// (nil, nil) when the provider has no result.
	SearchBest(ctx context.Context, query string) (*PlaceSearchResult, error)
}

// GooglePlacesClient calls the Places Text Search endpoint.
type GooglePlacesClient struct {
	HTTP   *http.Client
	APIKey string
}

func NewGooglePlacesClient() PlaceSearchClientInterface {
	return &GooglePlacesClient{
		HTTP:   &http.Client{Timeout: 5 * time.Second},
		APIKey: os.Getenv("GOOGLE_PLACES_API_KEY"),
	}
}

func (c *GooglePlacesClient) SearchBest(ctx context.Context, query string) (*PlaceSearchResult, error) {
	if c.APIKey == "" {
		return nil, fmt.Errorf("places: api key not configured")
	}

	u := url.URL{
		Scheme: "https",
		Host:   "maps.googleapis.com",
		Path:   "/maps/api/place/textsearch/json",
	}
	q := url.Values{}
	q.Set("query", query)
	q.Set("key", c.APIKey)
	u.RawQuery = q.Encode()

	req, _ := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places http error: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("places bad status: %s", resp.Status)
	}

	var payload struct {
		Status  string `json:"status"`
		Results []struct {
			Name             string  `json:"name"`
			PlaceID          string  `json:"place_id"`
			Rating           float64 `json:"rating"`
			UserRatingsTotal int     `json:"user_ratings_total"`
			Geometry         struct {
				Location struct {
					Lat float64 `json:"lat"`
					Lng float64 `json:"lng"`
				} `json:"location"`
			} `json:"geometry"`
			Photos []struct {
				PhotoReference string `json:"photo_reference"`
			} `json:"photos"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("places decode: %w", err)
	}
	if payload.Status == "ZERO_RESULTS" || len(payload.Results) == 0 {
		return nil, nil
	}

	best := payload.Results[0]
	out := &PlaceSearchResult{
		Name:        best.Name,
		Latitude:    best.Geometry.Location.Lat,
		Longitude:   best.Geometry.Location.Lng,
		ExternalID:  best.PlaceID,
		Rating:      best.Rating,
		ReviewCount: best.UserRatingsTotal,
	}
	if len(best.Photos) > 0 {
		out.PhotoRef = best.Photos[0].PhotoReference
	}
	return out, nil
}
