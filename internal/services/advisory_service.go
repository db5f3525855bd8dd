package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type AdvisoryClientInterface interface {
	// DailyAdvisory returns a short human-readable weather/safety note
	// for one trip day, or "" when nothing is available. Best effort:
	// never returns an error to the caller.
	DailyAdvisory(ctx context.Context, lat, lng float64, date string) string
}

// OpenMeteoAdvisoryClient reads the open-meteo daily forecast, which
// needs no API key. Dates outside the forecast horizon simply come back
// empty.
type OpenMeteoAdvisoryClient struct {
	http    *http.Client
	baseURL string
}

func NewOpenMeteoAdvisoryClient() AdvisoryClientInterface {
	return &OpenMeteoAdvisoryClient{
		http:    &http.Client{Timeout: 4 * time.Second},
		baseURL: "https://api.open-meteo.com/v1/forecast",
	}
}

func (c *OpenMeteoAdvisoryClient) DailyAdvisory(ctx context.Context, lat, lng float64, date string) string {
	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%f", lat))
	q.Set("longitude", fmt.Sprintf("%f", lng))
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min,precipitation_probability_max")
	q.Set("start_date", date)
	q.Set("end_date", date)
	q.Set("timezone", "auto")

	req, _ := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+q.Encode(), nil)
	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("advisory fetch failed: %v", err)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		log.Printf("advisory bad status: %s", resp.Status)
		return ""
	}

	var payload struct {
		Daily struct {
			WeatherCode       []int     `json:"weather_code"`
			TempMax           []float64 `json:"temperature_2m_max"`
			TempMin           []float64 `json:"temperature_2m_min"`
			PrecipProbability []int     `json:"precipitation_probability_max"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		log.Printf("advisory decode failed: %v", err)
		return ""
	}
	d := payload.Daily
	if len(d.WeatherCode) == 0 || len(d.TempMax) == 0 || len(d.TempMin) == 0 {
		return ""
	}

	parts := []string{fmt.Sprintf("%s, %.0f-%.0f°C", describeWeatherCode(d.WeatherCode[0]), d.TempMin[0], d.TempMax[0])}
	if len(d.PrecipProbability) > 0 && d.PrecipProbability[0] >= 50 {
		parts = append(parts, fmt.Sprintf("%d%% chance of rain, pack an umbrella", d.PrecipProbability[0]))
	}
	if d.TempMax[0] >= 35 {
		parts = append(parts, "extreme heat, plan indoor stops around midday")
	}
	return strings.Join(parts, "; ")
}

// describeWeatherCode maps WMO weather codes onto short phrases.
func describeWeatherCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "foggy"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	default:
		return "thunderstorms"
	}
}
