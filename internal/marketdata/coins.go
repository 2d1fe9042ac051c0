// Package marketdata provides cached access to external price and
// exchange-rate sources. Lookups degrade through cache and static fallback
// tables instead of failing, so portfolio valuation stays usable when
// providers are down.
package marketdata

import "sort"

// Coin describes a supported cryptocurrency. IDs follow the CoinGecko
// naming scheme since that is what the price source expects.
type Coin struct {
	ID               string  `json:"id"`
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	FallbackPriceUSD float64 `json:"-"`
}

// supportedCoins is the fixed registry of trackable coins. Fallback prices
// are deliberately coarse; they only matter when both the live source and
// the cache have nothing to offer.
var supportedCoins = map[string]Coin{
	"bitcoin":       {ID: "bitcoin", Symbol: "BTC", Name: "Bitcoin", FallbackPriceUSD: 65000},
	"ethereum":      {ID: "ethereum", Symbol: "ETH", Name: "Ethereum", FallbackPriceUSD: 3400},
	"tether":        {ID: "tether", Symbol: "USDT", Name: "Tether", FallbackPriceUSD: 1},
	"binancecoin":   {ID: "binancecoin", Symbol: "BNB", Name: "BNB", FallbackPriceUSD: 580},
	"solana":        {ID: "solana", Symbol: "SOL", Name: "Solana", FallbackPriceUSD: 150},
	"ripple":        {ID: "ripple", Symbol: "XRP", Name: "XRP", FallbackPriceUSD: 0.52},
	"usd-coin":      {ID: "usd-coin", Symbol: "USDC", Name: "USD Coin", FallbackPriceUSD: 1},
	"cardano":       {ID: "cardano", Symbol: "ADA", Name: "Cardano", FallbackPriceUSD: 0.45},
	"dogecoin":      {ID: "dogecoin", Symbol: "DOGE", Name: "Dogecoin", FallbackPriceUSD: 0.12},
	"tron":          {ID: "tron", Symbol: "TRX", Name: "TRON", FallbackPriceUSD: 0.13},
	"polkadot":      {ID: "polkadot", Symbol: "DOT", Name: "Polkadot", FallbackPriceUSD: 6.5},
	"chainlink":     {ID: "chainlink", Symbol: "LINK", Name: "Chainlink", FallbackPriceUSD: 14},
	"litecoin":      {ID: "litecoin", Symbol: "LTC", Name: "Litecoin", FallbackPriceUSD: 75},
	"avalanche-2":   {ID: "avalanche-2", Symbol: "AVAX", Name: "Avalanche", FallbackPriceUSD: 28},
	"shiba-inu":     {ID: "shiba-inu", Symbol: "SHIB", Name: "Shiba Inu", FallbackPriceUSD: 0.000018},
	"matic-network": {ID: "matic-network", Symbol: "MATIC", Name: "Polygon", FallbackPriceUSD: 0.55},
}

// IsSupported reports whether the coin id is in the registry.
func IsSupported(coinID string) bool {
	_, ok := supportedCoins[coinID]
	return ok
}

// CoinByID returns the registry entry for a coin id.
func CoinByID(coinID string) (Coin, bool) {
	c, ok := supportedCoins[coinID]
	return c, ok
}

// SupportedCoins returns the registry sorted by coin id.
func SupportedCoins() []Coin {
	coins := make([]Coin, 0, len(supportedCoins))
	for _, c := range supportedCoins {
		coins = append(coins, c)
	}
	sort.Slice(coins, func(i, j int) bool { return coins[i].ID < coins[j].ID })
	return coins
}
