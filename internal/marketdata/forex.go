package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RateSource fetches a full exchange-rate table based on USD
// (currency code -> units per 1 USD).
type RateSource interface {
	Name() string
	FetchRates(ctx context.Context) (map[string]float64, error)
}

// OpenERAPIClient fetches rates from open.er-api.com, the primary source.
type OpenERAPIClient struct {
	client *resty.Client
}

var _ RateSource = (*OpenERAPIClient)(nil)

// NewOpenERAPIClient creates the primary exchange-rate client.
func NewOpenERAPIClient(timeout time.Duration) *OpenERAPIClient {
	return &OpenERAPIClient{
		client: resty.New().
			SetBaseURL("https://open.er-api.com/v6").
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Name returns the source's display name.
func (c *OpenERAPIClient) Name() string { return "open.er-api.com" }

type openERAPIResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// FetchRates fetches the USD-based rate table.
func (c *OpenERAPIClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	var payload openERAPIResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get("/latest/USD")
	if err != nil {
		return nil, fmt.Errorf("open.er-api request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("open.er-api request: unexpected status %d", resp.StatusCode())
	}
	if payload.Result != "success" || len(payload.Rates) == 0 {
		return nil, fmt.Errorf("open.er-api request: result %q with %d rates", payload.Result, len(payload.Rates))
	}
	return payload.Rates, nil
}

// FrankfurterClient fetches rates from frankfurter.dev, the secondary
// source. Its table covers fewer currencies than the primary, which is
// acceptable: missing pairs degrade to the static fallback.
type FrankfurterClient struct {
	client *resty.Client
}

var _ RateSource = (*FrankfurterClient)(nil)

// NewFrankfurterClient creates the secondary exchange-rate client.
func NewFrankfurterClient(timeout time.Duration) *FrankfurterClient {
	return &FrankfurterClient{
		client: resty.New().
			SetBaseURL("https://api.frankfurter.dev/v1").
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

// Name returns the source's display name.
func (c *FrankfurterClient) Name() string { return "frankfurter.dev" }

type frankfurterResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// FetchRates fetches the USD-based rate table.
func (c *FrankfurterClient) FetchRates(ctx context.Context) (map[string]float64, error) {
	var payload frankfurterResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("base", "USD").
		SetResult(&payload).
		Get("/latest")
	if err != nil {
		return nil, fmt.Errorf("frankfurter request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("frankfurter request: unexpected status %d", resp.StatusCode())
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("frankfurter request: empty rate table")
	}
	rates := make(map[string]float64, len(payload.Rates)+1)
	for code, rate := range payload.Rates {
		rates[code] = rate
	}
	rates["USD"] = 1
	return rates, nil
}
