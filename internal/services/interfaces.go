package services

import (
	"context"
	"time"

	"paisatrack/internal/marketdata"
	"paisatrack/internal/models"
	"paisatrack/internal/pagination"
	"paisatrack/internal/portfolio"
)

// PriceProvider is the read side of the price cache: a quote for every
// recognized coin id, never an error.
type PriceProvider interface {
	GetPrices(ctx context.Context, coinIDs []string, quoteCurrency string) map[string]marketdata.Quote
}

// RateProvider answers currency conversion queries, degrading internally
// instead of failing.
type RateProvider interface {
	GetRate(ctx context.Context, from, to string) float64
	Convert(ctx context.Context, amount float64, from, to string) float64
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// CreateInvestmentParams holds the validated inputs for a new investment.
type CreateInvestmentParams struct {
	CoinID         string
	InvestedAmount float64
	Quantity       float64
	PurchaseDate   *time.Time
	Notes          string
}

// SellInvestmentParams holds the validated inputs for a (partial) sale.
type SellInvestmentParams struct {
	SellQuantity   float64
	SellPriceLocal float64
	SellDate       *time.Time
}

// PortfolioView bundles everything the investments list endpoint returns:
// enriched investments, the derived snapshot, and the rate used.
type PortfolioView struct {
	Investments  []portfolio.Valuation `json:"investments"`
	Snapshot     portfolio.Snapshot    `json:"snapshot"`
	ExchangeRate float64               `json:"exchange_rate"`
}

// InvestmentServicer defines the contract for investment-related business
// logic, including the valuation and analytics entry points.
type InvestmentServicer interface {
	CreateInvestment(ctx context.Context, userID string, params CreateInvestmentParams) (*portfolio.Valuation, error)
	ListEnrichedInvestments(ctx context.Context, userID string) (*PortfolioView, error)
	GetInvestment(ctx context.Context, userID, investmentID string) (*portfolio.Valuation, error)
	GetUserInvestments(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	SellInvestment(ctx context.Context, userID, investmentID string, params SellInvestmentParams) (*models.Investment, *portfolio.SaleSummary, error)
	DeleteInvestment(ctx context.Context, userID, investmentID string) error
	BatchPrices(ctx context.Context, coinIDs []string) map[string]marketdata.Quote
	CurrentExchangeRate(ctx context.Context) float64
}
