package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const rateCacheTTL = time.Hour

// Fallback rates (per 1 USD) used when the rate service is down. Stale
// values are acceptable: cost conversion is an estimate, not billing.
var fallbackUSDRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.78,
	"JPY": 148.0,
	"KRW": 1340.0,
	"VND": 25400.0,
	"THB": 34.0,
	"CNY": 7.2,
	"AUD": 1.52,
	"CAD": 1.37,
}

type RateClientInterface interface {
	// Rate returns how many units of `to` one unit of `from` buys.
	// Never fails: on service errors it falls back to the table above
	// (1.0 for unknown currencies) and logs.
	Rate(ctx context.Context, from, to string) float64
}

type ExchangeRateClient struct {
	http    *http.Client
	baseURL string

	mu      sync.Mutex
	rates   map[string]float64 // per-USD
	fetched time.Time
}

func NewExchangeRateClient() RateClientInterface {
	return &ExchangeRateClient{
		http:    &http.Client{Timeout: 4 * time.Second},
		baseURL: "https://open.er-api.com/v6/latest/USD",
	}
}

func (c *ExchangeRateClient) Rate(ctx context.Context, from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" || from == to {
		return 1.0
	}

	rates := c.currentRates(ctx)
	fromUSD, okFrom := rates[from]
	toUSD, okTo := rates[to]
	if !okFrom || !okTo || fromUSD == 0 {
		log.Printf("no exchange rate for %s->%s, using 1.0", from, to)
		return 1.0
	}
	return toUSD / fromUSD
}

func (c *ExchangeRateClient) currentRates(ctx context.Context) map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.rates != nil && time.Since(c.fetched) < rateCacheTTL {
		return c.rates
	}

	fresh, err := c.fetch(ctx)
	if err != nil {
		log.Printf("exchange rate fetch failed: %v", err)
		if c.rates != nil {
			return c.rates // stale beats hard-coded
		}
		return fallbackUSDRates
	}
	c.rates = fresh
	c.fetched = time.Now()
	return c.rates
}

func (c *ExchangeRateClient) fetch(ctx context.Context) (map[string]float64, error) {
	req, _ := http.NewRequestWithContext(ctx, "GET", c.baseURL, nil)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("exchange rate bad status: %s", resp.Status)
	}

	var payload struct {
		Result string             `json:"result"`
		Rates  map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	if payload.Result != "success" || len(payload.Rates) == 0 {
		return nil, fmt.Errorf("exchange rate payload not usable")
	}
	return payload.Rates, nil
}
