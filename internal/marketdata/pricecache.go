package marketdata

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultPriceTTL bounds how stale a served price can be under normal
// operation. Entries past the TTL are refetched lazily on the next request.
const DefaultPriceTTL = time.Minute

// PriceCache is a short-TTL cache in front of a PriceSource. It never
// returns an error: on a failed fetch it serves the last good entry, and
// failing that a static per-coin fallback. Unrecognized coin ids are
// omitted from the result.
type PriceCache struct {
	source PriceSource
	ttl    time.Duration
	logger *zap.SugaredLogger

	mu      sync.RWMutex
	entries map[string]priceEntry
}

type priceEntry struct {
	quotes    map[string]Quote
	fetchedAt time.Time
}

// NewPriceCache creates a price cache over the given source. A non-positive
// ttl falls back to DefaultPriceTTL.
func NewPriceCache(source PriceSource, ttl time.Duration, logger *zap.SugaredLogger) *PriceCache {
	if ttl <= 0 {
		ttl = DefaultPriceTTL
	}
	return &PriceCache{
		source:  source,
		ttl:     ttl,
		logger:  logger,
		entries: make(map[string]priceEntry),
	}
}

// GetPrices returns a quote for every recognized coin id requested. Live
// data is preferred, then a stale cache entry, then the registry fallback
// price. The returned map is owned by the caller.
func (c *PriceCache) GetPrices(ctx context.Context, coinIDs []string, quoteCurrency string) map[string]Quote {
	ids := normalizeIDs(coinIDs)
	if len(ids) == 0 {
		return map[string]Quote{}
	}
	key := cacheKey(ids, quoteCurrency)

	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && time.Since(entry.fetchedAt) < c.ttl {
		return copyQuotes(entry.quotes)
	}

	quotes, err := c.source.FetchPrices(ctx, ids, quoteCurrency)
	if err != nil {
		if ok {
			// Serve the expired entry rather than fail the request.
			c.logger.Warnw("price source unavailable, serving stale prices",
				"error", err, "age", time.Since(entry.fetchedAt).String())
			return copyQuotes(entry.quotes)
		}
		c.logger.Warnw("price source unavailable, serving fallback prices", "error", err)
		return fallbackQuotes(ids)
	}

	// The source may know fewer ids than the registry does; top up any
	// recognized id it skipped so callers always get a complete mapping.
	for _, id := range ids {
		if _, priced := quotes[id]; priced {
			continue
		}
		if fb, found := fallbackQuote(id); found {
			c.logger.Warnw("price source omitted coin, using fallback price", "coin_id", id)
			quotes[id] = fb
		}
	}

	c.mu.Lock()
	c.entries[key] = priceEntry{quotes: quotes, fetchedAt: time.Now()}
	c.mu.Unlock()

	return copyQuotes(quotes)
}

// normalizeIDs keeps only recognized ids, de-duplicated and sorted.
func normalizeIDs(coinIDs []string) []string {
	seen := make(map[string]struct{}, len(coinIDs))
	ids := make([]string, 0, len(coinIDs))
	for _, id := range coinIDs {
		id = strings.ToLower(strings.TrimSpace(id))
		if _, dup := seen[id]; dup || !IsSupported(id) {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// cacheKey fingerprints the sorted id set together with the quote currency.
func cacheKey(sortedIDs []string, quoteCurrency string) string {
	return strings.ToLower(quoteCurrency) + "|" + strings.Join(sortedIDs, ",")
}

func fallbackQuote(coinID string) (Quote, bool) {
	coin, ok := CoinByID(coinID)
	if !ok {
		return Quote{}, false
	}
	// Fallback prices are denominated in USD, the internal quote currency.
	return Quote{Price: coin.FallbackPriceUSD, FetchedAt: time.Now()}, true
}

func fallbackQuotes(ids []string) map[string]Quote {
	quotes := make(map[string]Quote, len(ids))
	for _, id := range ids {
		if q, ok := fallbackQuote(id); ok {
			quotes[id] = q
		}
	}
	return quotes
}

func copyQuotes(src map[string]Quote) map[string]Quote {
	dst := make(map[string]Quote, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
