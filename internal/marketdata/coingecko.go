package marketdata

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// Quote is the ephemeral market view of one coin in a quote currency.
type Quote struct {
	Price     float64   `json:"price"`
	Change24h float64   `json:"change_24h"`
	FetchedAt time.Time `json:"fetched_at"`
}

// PriceSource fetches current prices plus 24h change for a set of coin ids,
// denominated in the given quote currency. Implementations are best-effort:
// ids the source does not know are simply absent from the result.
type PriceSource interface {
	FetchPrices(ctx context.Context, coinIDs []string, quoteCurrency string) (map[string]Quote, error)
}

// CoinGeckoClient fetches spot prices from the CoinGecko simple-price API.
type CoinGeckoClient struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

var _ PriceSource = (*CoinGeckoClient)(nil)

// NewCoinGeckoClient creates a CoinGecko client with a request timeout and a
// rate limiter tuned for the free API tier (roughly 30 calls/minute).
func NewCoinGeckoClient(timeout time.Duration, logger *zap.SugaredLogger) *CoinGeckoClient {
	client := resty.New().
		SetBaseURL(coingeckoBaseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &CoinGeckoClient{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
		logger:  logger,
	}
}

// FetchPrices performs one batched request for all requested ids.
func (c *CoinGeckoClient) FetchPrices(ctx context.Context, coinIDs []string, quoteCurrency string) (map[string]Quote, error) {
	if len(coinIDs) == 0 {
		return map[string]Quote{}, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("price rate limiter wait: %w", err)
	}

	quote := strings.ToLower(quoteCurrency)
	var payload map[string]map[string]float64

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"ids":                 strings.Join(coinIDs, ","),
			"vs_currencies":       quote,
			"include_24hr_change": "true",
		}).
		SetResult(&payload).
		Get("/simple/price")
	if err != nil {
		return nil, fmt.Errorf("coingecko request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko request: unexpected status %d", resp.StatusCode())
	}

	now := time.Now()
	changeKey := quote + "_24h_change"
	quotes := make(map[string]Quote, len(payload))
	for id, fields := range payload {
		price, ok := fields[quote]
		if !ok || price <= 0 {
			c.logger.Warnw("coingecko returned no usable price", "coin_id", id, "quote", quote)
			continue
		}
		quotes[id] = Quote{
			Price:     price,
			Change24h: fields[changeKey],
			FetchedAt: now,
		}
	}

	return quotes, nil
}
