package marketdata

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultFXTTL is how long a fetched rate table is trusted. Refresh is
// lazy: the first request past the TTL triggers a refetch.
const DefaultFXTTL = time.Hour

// staticRates is the last-line fallback table (units per 1 USD). It must
// cover at least the local currency and USD; the rest is convenience.
var staticRates = map[string]float64{
	"USD": 1,
	"PKR": 278.50,
	"EUR": 0.92,
	"GBP": 0.79,
	"AED": 3.67,
	"SAR": 3.75,
	"INR": 83.10,
	"BDT": 117.50,
	"MYR": 4.47,
	"CNY": 7.24,
	"JPY": 155.00,
	"CAD": 1.37,
	"AUD": 1.51,
}

// FXService caches a USD-based rate table and answers conversion queries.
// It never returns an error: lookups degrade through the cached table, the
// static fallback table, and finally an identity conversion with a logged
// warning. That last valve is deliberate; a flaky rate provider must not
// make the tracker unusable.
type FXService struct {
	sources []RateSource
	ttl     time.Duration
	logger  *zap.SugaredLogger

	mu        sync.RWMutex
	rates     map[string]float64
	fetchedAt time.Time
}

// NewFXService creates an FX service that tries sources in order on each
// refresh. A non-positive ttl falls back to DefaultFXTTL.
func NewFXService(ttl time.Duration, logger *zap.SugaredLogger, sources ...RateSource) *FXService {
	if ttl <= 0 {
		ttl = DefaultFXTTL
	}
	return &FXService{
		sources: sources,
		ttl:     ttl,
		logger:  logger,
	}
}

// GetRate returns the number of `to` units per 1 `from` unit. Identity
// pairs return 1 without touching the network or the cache.
func (s *FXService) GetRate(ctx context.Context, from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return 1
	}

	table := s.table(ctx)
	fromRate, fromOK := s.lookup(table, from)
	toRate, toOK := s.lookup(table, to)
	if !fromOK || !toOK || fromRate <= 0 {
		s.logger.Warnw("no exchange rate available, using identity conversion",
			"from", from, "to", to)
		return 1
	}

	// Both legs are quoted against USD, so from->to is one division.
	return toRate / fromRate
}

// Convert converts an amount between currencies via two hops through the
// USD-based table: amount -> USD -> target.
func (s *FXService) Convert(ctx context.Context, amount float64, from, to string) float64 {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == to {
		return amount
	}

	table := s.table(ctx)
	fromRate, fromOK := s.lookup(table, from)
	toRate, toOK := s.lookup(table, to)
	if !fromOK || !toOK || fromRate <= 0 {
		s.logger.Warnw("no exchange rate available, returning amount unconverted",
			"from", from, "to", to, "amount", amount)
		return amount
	}

	usd := amount / fromRate
	return usd * toRate
}

// lookup resolves a currency against the current table, then the static
// fallback.
func (s *FXService) lookup(table map[string]float64, currency string) (float64, bool) {
	if rate, ok := table[currency]; ok && rate > 0 {
		return rate, true
	}
	rate, ok := staticRates[currency]
	return rate, ok
}

// table returns the cached rate table, refreshing it when expired. On a
// refresh where every source fails, a stale table is kept; with no table at
// all the static fallback is used.
func (s *FXService) table(ctx context.Context) map[string]float64 {
	s.mu.RLock()
	rates, fetchedAt := s.rates, s.fetchedAt
	s.mu.RUnlock()

	if rates != nil && time.Since(fetchedAt) < s.ttl {
		return rates
	}

	for _, source := range s.sources {
		fetched, err := source.FetchRates(ctx)
		if err != nil {
			s.logger.Warnw("exchange-rate source failed", "source", source.Name(), "error", err)
			continue
		}
		s.mu.Lock()
		s.rates = fetched
		s.fetchedAt = time.Now()
		s.mu.Unlock()
		return fetched
	}

	if rates != nil {
		s.logger.Warnw("all exchange-rate sources failed, serving stale table",
			"age", time.Since(fetchedAt).String())
		return rates
	}
	s.logger.Warnw("all exchange-rate sources failed, serving static rates")
	return staticRates
}
