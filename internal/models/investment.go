package models

import "time"

// InvestmentStatus represents the lifecycle state of an investment lot.
// A full sell is terminal; a partial sell keeps the remainder open.
type InvestmentStatus string

const (
	InvestmentStatusActive  InvestmentStatus = "active"
	InvestmentStatusPartial InvestmentStatus = "partial"
	InvestmentStatusSold    InvestmentStatus = "sold"
)

// Investment represents a single purchase lot of a cryptocurrency, held in
// the user's local currency. Amounts are denominated in the local currency;
// the purchase-time exchange rate (local per USD) is recorded so that
// normalized USD profit/loss can be computed later without re-fetching
// historical rates.
//
// Current value and unrealized P&L are never stored; they are derived per
// request by the portfolio package from live quotes and the current rate.
type Investment struct {
	Base
	UserID   string `gorm:"type:uuid;not null;index" json:"user_id"`
	CoinID   string `gorm:"not null;index" json:"coin_id"`
	CoinName string `gorm:"not null" json:"coin_name"`
	Symbol   string `gorm:"not null" json:"symbol"`

	// Cost basis. PurchasePriceLocal = InvestedAmount / Quantity at creation
	// and is preserved across partial sells.
	InvestedAmount     float64   `gorm:"not null" json:"invested_amount"`
	Quantity           float64   `gorm:"not null" json:"quantity"`
	PurchasePriceLocal float64   `gorm:"not null" json:"purchase_price_local"`
	PurchasePriceUSD   float64   `gorm:"not null" json:"purchase_price_usd"`
	PurchaseDate       time.Time `gorm:"not null" json:"purchase_date"`

	// Provenance.
	OriginalCurrency       string  `gorm:"not null" json:"original_currency"`
	ExchangeRateAtPurchase float64 `gorm:"not null" json:"exchange_rate_at_purchase"` // local per USD

	// Lifecycle. Sell fields are populated once a sale has happened;
	// RealizedProfitLoss accumulates across repeated partial sells.
	Status                       InvestmentStatus `gorm:"not null;default:'active';index" json:"status"`
	SellDate                     *time.Time       `json:"sell_date,omitempty"`
	SellPriceLocal               float64          `json:"sell_price_local,omitempty"`
	SellPriceUSD                 float64          `json:"sell_price_usd,omitempty"`
	SellQuantity                 float64          `json:"sell_quantity,omitempty"`
	RealizedProfitLoss           float64          `json:"realized_profit_loss,omitempty"`
	RealizedProfitLossPercentage float64          `json:"realized_profit_loss_percentage,omitempty"`

	Notes string `gorm:"size:500" json:"notes,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Open reports whether the investment still holds quantity that should be
// valued against the market (i.e. it has not been fully sold).
func (i *Investment) Open() bool {
	return i.Status != InvestmentStatusSold
}
