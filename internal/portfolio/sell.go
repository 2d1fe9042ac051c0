package portfolio

import (
	"time"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/models"
)

// SaleSummary is the receipt-style record of a single sale, distinct from
// the mutated investment. Amounts are reported in both currencies.
type SaleSummary struct {
	InvestmentID string `json:"investment_id"`
	CoinID       string `json:"coin_id"`
	Symbol       string `json:"symbol"`

	SellQuantity   float64   `json:"sell_quantity"`
	SellDate       time.Time `json:"sell_date"`
	SellPriceLocal float64   `json:"sell_price_local"`
	SellPriceUSD   float64   `json:"sell_price_usd"`

	SoldAmountLocal      float64 `json:"sold_amount_local"`
	SoldAmountUSD        float64 `json:"sold_amount_usd"`
	InvestedPortionLocal float64 `json:"invested_portion_local"`
	InvestedPortionUSD   float64 `json:"invested_portion_usd"`

	RealizedProfitLossLocal      float64 `json:"realized_profit_loss_local"`
	RealizedProfitLossUSD        float64 `json:"realized_profit_loss_usd"`
	RealizedProfitLossPercentage float64 `json:"realized_profit_loss_percentage"`

	RemainingQuantity       float64                 `json:"remaining_quantity"`
	RemainingInvestedAmount float64                 `json:"remaining_invested_amount"`
	Status                  models.InvestmentStatus `json:"status"`
}

// ProcessSell applies a (partial) sale to a copy of the investment and
// returns the mutated record alongside a sale summary. The caller is
// responsible for persisting the returned record conditionally, so that
// concurrent sells against the same row cannot both succeed.
//
// Cost basis is allocated pro-rata across the single lot: the sold fraction
// carries the same unit cost as the remainder, so PurchasePriceLocal is
// unchanged for whatever stays open. A full sell transitions the record to
// sold and keeps quantity/invested amount intact as a historical record;
// sold is terminal.
//
// usdToLocal is the current rate (local units per 1 USD) used to normalize
// the sale proceeds; the invested portion is normalized with the
// purchase-time rate stored on the record.
func ProcessSell(inv models.Investment, sellQuantity, sellPriceLocal, usdToLocal float64, sellDate time.Time) (models.Investment, SaleSummary, error) {
	if inv.Status == models.InvestmentStatusSold {
		return inv, SaleSummary{}, apperrors.ErrInvestmentAlreadySold
	}
	if sellQuantity <= 0 {
		return inv, SaleSummary{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Sell quantity must be positive")
	}
	if sellQuantity > inv.Quantity {
		return inv, SaleSummary{}, apperrors.ErrInsufficientQuantity
	}
	if sellPriceLocal <= 0 {
		return inv, SaleSummary{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "Sell price must be positive")
	}

	soldAmountLocal := sellQuantity * sellPriceLocal
	investedPortionLocal := (sellQuantity / inv.Quantity) * inv.InvestedAmount
	realizedLocal := soldAmountLocal - investedPortionLocal

	var sellPriceUSD float64
	if inv.OriginalCurrency == "USD" {
		sellPriceUSD = sellPriceLocal
	} else if usdToLocal > 0 {
		sellPriceUSD = sellPriceLocal / usdToLocal
	}
	soldAmountUSD := sellQuantity * sellPriceUSD

	var investedPortionUSD float64
	if inv.OriginalCurrency == "USD" {
		investedPortionUSD = investedPortionLocal
	} else if inv.ExchangeRateAtPurchase > 0 {
		investedPortionUSD = investedPortionLocal / inv.ExchangeRateAtPurchase
	}

	summary := SaleSummary{
		InvestmentID:            inv.ID,
		CoinID:                  inv.CoinID,
		Symbol:                  inv.Symbol,
		SellQuantity:            sellQuantity,
		SellDate:                sellDate,
		SellPriceLocal:          sellPriceLocal,
		SellPriceUSD:            sellPriceUSD,
		SoldAmountLocal:         soldAmountLocal,
		SoldAmountUSD:           soldAmountUSD,
		InvestedPortionLocal:    investedPortionLocal,
		InvestedPortionUSD:      investedPortionUSD,
		RealizedProfitLossLocal: realizedLocal,
		RealizedProfitLossUSD:   soldAmountUSD - investedPortionUSD,
	}
	if investedPortionLocal != 0 {
		summary.RealizedProfitLossPercentage = realizedLocal / investedPortionLocal * 100
	}

	if sellQuantity == inv.Quantity {
		// Full sell: terminal. Quantity and invested amount stay on the
		// record as the historical lot size.
		inv.Status = models.InvestmentStatusSold
	} else {
		inv.Status = models.InvestmentStatusPartial
		fraction := sellQuantity / inv.Quantity
		inv.Quantity -= sellQuantity
		inv.InvestedAmount *= 1 - fraction
	}

	inv.SellDate = &sellDate
	inv.SellPriceLocal = sellPriceLocal
	inv.SellPriceUSD = sellPriceUSD
	inv.SellQuantity += sellQuantity
	// Realized P&L accumulates across repeated partial sells; the
	// percentage is cumulative realized over cumulative cost basis sold,
	// which the constant unit cost makes derivable from the sell quantity.
	inv.RealizedProfitLoss += realizedLocal
	if basisSold := inv.PurchasePriceLocal * inv.SellQuantity; basisSold != 0 {
		inv.RealizedProfitLossPercentage = inv.RealizedProfitLoss / basisSold * 100
	}

	if inv.Status == models.InvestmentStatusSold {
		summary.RemainingQuantity = 0
		summary.RemainingInvestedAmount = 0
	} else {
		summary.RemainingQuantity = inv.Quantity
		summary.RemainingInvestedAmount = inv.InvestedAmount
	}
	summary.Status = inv.Status

	return inv, summary, nil
}
