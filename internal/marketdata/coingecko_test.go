package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinGeckoFetchPricesParsesSimplePriceResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/simple/price", r.URL.Path)
		assert.Equal(t, "bitcoin,ethereum", r.URL.Query().Get("ids"))
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currencies"))
		assert.Equal(t, "true", r.URL.Query().Get("include_24hr_change"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"bitcoin":  {"usd": 61234.5, "usd_24h_change": -1.8},
			"ethereum": {"usd": 3050.25, "usd_24h_change": 2.1}
		}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(5*time.Second, testLogger())
	client.client.SetBaseURL(server.URL)

	quotes, err := client.FetchPrices(context.Background(), []string{"bitcoin", "ethereum"}, "usd")
	require.NoError(t, err)
	require.Len(t, quotes, 2)

	assert.Equal(t, 61234.5, quotes["bitcoin"].Price)
	assert.Equal(t, -1.8, quotes["bitcoin"].Change24h)
	assert.Equal(t, 3050.25, quotes["ethereum"].Price)
	assert.False(t, quotes["bitcoin"].FetchedAt.IsZero())
}

func TestCoinGeckoFetchPricesSkipsUnusablePrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"bitcoin":  {"usd": 61234.5},
			"ethereum": {"usd": 0}
		}`))
	}))
	defer server.Close()

	client := NewCoinGeckoClient(5*time.Second, testLogger())
	client.client.SetBaseURL(server.URL)

	quotes, err := client.FetchPrices(context.Background(), []string{"bitcoin", "ethereum"}, "usd")
	require.NoError(t, err)

	assert.Contains(t, quotes, "bitcoin")
	assert.NotContains(t, quotes, "ethereum")
}

func TestCoinGeckoFetchPricesErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewCoinGeckoClient(5*time.Second, testLogger())
	client.client.SetBaseURL(server.URL)

	_, err := client.FetchPrices(context.Background(), []string{"bitcoin"}, "usd")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCoinGeckoFetchPricesEmptyRequest(t *testing.T) {
	client := NewCoinGeckoClient(5*time.Second, testLogger())

	quotes, err := client.FetchPrices(context.Background(), nil, "usd")
	require.NoError(t, err)
	assert.Empty(t, quotes)
}
