// Package portfolio contains the pure computation core: valuing stored
// investments against live market data, aggregating them into a portfolio
// snapshot, and splitting lots on (partial) sells. Nothing here touches the
// network or the database; callers supply quotes and rates.
package portfolio

import (
	"paisatrack/internal/models"
)

// Quote carries the market inputs needed to value one coin. Prices are in
// USD, the internal quote currency.
type Quote struct {
	PriceUSD  float64
	Change24h float64
}

// Valuation is the derived, request-scoped view of an investment. It is
// recomputed on every request and never persisted. When HasQuote is false
// no market data was available and every derived field is meaningless;
// presentation layers must show "unavailable" rather than zero.
type Valuation struct {
	Investment models.Investment `json:"investment"`
	HasQuote   bool              `json:"has_quote"`

	CurrentPriceUSD   float64 `json:"current_price_usd"`
	CurrentPriceLocal float64 `json:"current_price_local"`
	CurrentValueUSD   float64 `json:"current_value_usd"`
	CurrentValueLocal float64 `json:"current_value_local"`

	InvestedAmountUSD float64 `json:"invested_amount_usd"`

	ProfitLossUSD        float64 `json:"profit_loss_usd"`
	ProfitLossLocal      float64 `json:"profit_loss_local"`
	ProfitLossPercentage float64 `json:"profit_loss_percentage"`

	Change24h float64 `json:"change_24h"`
}

// Valuate computes the current view of one investment from a quote and the
// current USD-to-local rate (local units per 1 USD).
//
// Sold investments and investments without a quote are passed through
// unvalued (HasQuote=false). Partial investments are valued on their
// remaining quantity and invested amount, which is exactly what the stored
// record holds after a partial sell.
func Valuate(inv models.Investment, quote Quote, hasQuote bool, usdToLocal float64) Valuation {
	v := Valuation{Investment: inv}
	if !inv.Open() || !hasQuote {
		return v
	}

	v.HasQuote = true
	v.Change24h = quote.Change24h
	v.CurrentPriceUSD = quote.PriceUSD
	v.CurrentValueUSD = inv.Quantity * quote.PriceUSD

	if usdToLocal > 0 && inv.OriginalCurrency != "USD" {
		v.CurrentPriceLocal = quote.PriceUSD * usdToLocal
	} else {
		v.CurrentPriceLocal = quote.PriceUSD
	}
	v.CurrentValueLocal = inv.Quantity * v.CurrentPriceLocal

	v.InvestedAmountUSD = investedUSD(inv)

	v.ProfitLossUSD = v.CurrentValueUSD - v.InvestedAmountUSD
	v.ProfitLossLocal = v.CurrentValueLocal - inv.InvestedAmount
	if v.InvestedAmountUSD != 0 {
		v.ProfitLossPercentage = v.ProfitLossUSD / v.InvestedAmountUSD * 100
	}

	return v
}

// investedUSD normalizes the cost basis to USD using the purchase-time
// exchange rate. A zero rate on a non-USD record leaves the USD basis at 0;
// the percentage guard above then keeps the math finite.
func investedUSD(inv models.Investment) float64 {
	if inv.OriginalCurrency == "USD" {
		return inv.InvestedAmount
	}
	if inv.ExchangeRateAtPurchase <= 0 {
		return 0
	}
	return inv.InvestedAmount / inv.ExchangeRateAtPurchase
}
