package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/marketdata"
	"paisatrack/internal/models"
	"paisatrack/internal/pagination"
	"paisatrack/internal/portfolio"
)

// quoteCurrency is the internal quote currency for normalized P&L math.
const quoteCurrency = "USD"

// investmentService handles investment-related business logic: persistence
// of lots, market-data enrichment, and the sell state machine.
type investmentService struct {
	db            *gorm.DB
	prices        PriceProvider
	rates         RateProvider
	localCurrency string
}

// NewInvestmentService creates a new InvestmentServicer. The price and rate
// providers are injected so tests can isolate the service from the network
// and callers can share one cache across requests.
func NewInvestmentService(db *gorm.DB, prices PriceProvider, rates RateProvider, localCurrency string) InvestmentServicer {
	return &investmentService{db: db, prices: prices, rates: rates, localCurrency: localCurrency}
}

// CreateInvestment validates the coin and amounts, captures the spot price
// and current exchange rate, and stores the new lot with its cost-basis
// fields computed.
func (s *investmentService) CreateInvestment(ctx context.Context, userID string, params CreateInvestmentParams) (*portfolio.Valuation, error) {
	coin, ok := marketdata.CoinByID(params.CoinID)
	if !ok {
		return nil, apperrors.ErrCoinNotSupported
	}
	if params.InvestedAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invested amount must be positive")
	}
	if params.Quantity <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Quantity must be positive")
	}
	if len(params.Notes) > 500 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Notes must be at most 500 characters")
	}

	purchaseDate := time.Now()
	if params.PurchaseDate != nil {
		purchaseDate = *params.PurchaseDate
	}

	rate := s.rates.GetRate(ctx, quoteCurrency, s.localCurrency)

	purchasePriceLocal := params.InvestedAmount / params.Quantity
	purchasePriceUSD := purchasePriceLocal
	if s.localCurrency != quoteCurrency && rate > 0 {
		purchasePriceUSD = purchasePriceLocal / rate
	}

	investment := &models.Investment{
		UserID:                 userID,
		CoinID:                 coin.ID,
		CoinName:               coin.Name,
		Symbol:                 coin.Symbol,
		InvestedAmount:         params.InvestedAmount,
		Quantity:               params.Quantity,
		PurchasePriceLocal:     purchasePriceLocal,
		PurchasePriceUSD:       purchasePriceUSD,
		PurchaseDate:           purchaseDate,
		OriginalCurrency:       s.localCurrency,
		ExchangeRateAtPurchase: rate,
		Status:                 models.InvestmentStatusActive,
		Notes:                  params.Notes,
	}

	if err := s.db.Create(investment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	quotes := s.prices.GetPrices(ctx, []string{coin.ID}, quoteCurrency)
	valuation := s.valuate(*investment, quotes, rate)
	return &valuation, nil
}

// ListEnrichedInvestments returns every investment for the user enriched
// with live market data, the derived portfolio snapshot, and the exchange
// rate the enrichment used. Sold records are included unvalued so the
// caller can render sale history.
func (s *investmentService) ListEnrichedInvestments(ctx context.Context, userID string) (*PortfolioView, error) {
	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).
		Order("purchase_date DESC").Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	coinIDs := make([]string, 0, len(investments))
	for i := range investments {
		if investments[i].Open() {
			coinIDs = append(coinIDs, investments[i].CoinID)
		}
	}

	quotes := s.prices.GetPrices(ctx, coinIDs, quoteCurrency)
	rate := s.rates.GetRate(ctx, quoteCurrency, s.localCurrency)

	valuations := make([]portfolio.Valuation, 0, len(investments))
	for i := range investments {
		valuations = append(valuations, s.valuate(investments[i], quotes, rate))
	}

	return &PortfolioView{
		Investments:  valuations,
		Snapshot:     portfolio.Aggregate(valuations),
		ExchangeRate: rate,
	}, nil
}

// GetInvestment returns a single enriched investment owned by the user.
func (s *investmentService) GetInvestment(ctx context.Context, userID, investmentID string) (*portfolio.Valuation, error) {
	investment, err := s.getOwned(userID, investmentID)
	if err != nil {
		return nil, err
	}

	quotes := s.prices.GetPrices(ctx, []string{investment.CoinID}, quoteCurrency)
	rate := s.rates.GetRate(ctx, quoteCurrency, s.localCurrency)
	valuation := s.valuate(*investment, quotes, rate)
	return &valuation, nil
}

// GetUserInvestments returns a paginated list of raw investment records.
func (s *investmentService) GetUserInvestments(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Investment{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := s.db.Where("user_id = ?", userID).Order("purchase_date DESC").
		Scopes(pagination.Paginate(page)).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// SellInvestment runs the sell state machine and persists the transition
// with a conditional update keyed on the status and quantity the processor
// observed. Concurrent sells against the same record cannot both match, so
// the loser gets a conflict error and must re-fetch.
func (s *investmentService) SellInvestment(ctx context.Context, userID, investmentID string, params SellInvestmentParams) (*models.Investment, *portfolio.SaleSummary, error) {
	investment, err := s.getOwned(userID, investmentID)
	if err != nil {
		return nil, nil, err
	}

	sellDate := time.Now()
	if params.SellDate != nil {
		sellDate = *params.SellDate
	}

	rate := s.rates.GetRate(ctx, quoteCurrency, s.localCurrency)

	updated, summary, err := portfolio.ProcessSell(*investment, params.SellQuantity, params.SellPriceLocal, rate, sellDate)
	if err != nil {
		return nil, nil, err
	}

	result := s.db.Model(&models.Investment{}).
		Where("id = ? AND status = ? AND quantity = ?", investment.ID, investment.Status, investment.Quantity).
		Updates(map[string]interface{}{
			"status":                          updated.Status,
			"quantity":                        updated.Quantity,
			"invested_amount":                 updated.InvestedAmount,
			"sell_date":                       updated.SellDate,
			"sell_price_local":                updated.SellPriceLocal,
			"sell_price_usd":                  updated.SellPriceUSD,
			"sell_quantity":                   updated.SellQuantity,
			"realized_profit_loss":            updated.RealizedProfitLoss,
			"realized_profit_loss_percentage": updated.RealizedProfitLossPercentage,
		})
	if result.Error != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil, apperrors.ErrInvestmentConflict
	}

	return &updated, &summary, nil
}

// DeleteInvestment soft-deletes an investment owned by the user.
func (s *investmentService) DeleteInvestment(ctx context.Context, userID, investmentID string) error {
	investment, err := s.getOwned(userID, investmentID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(investment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// BatchPrices resolves quotes for the requested coin ids via the cache.
func (s *investmentService) BatchPrices(ctx context.Context, coinIDs []string) map[string]marketdata.Quote {
	return s.prices.GetPrices(ctx, coinIDs, quoteCurrency)
}

// CurrentExchangeRate returns the local-per-USD rate currently in use.
func (s *investmentService) CurrentExchangeRate(ctx context.Context) float64 {
	return s.rates.GetRate(ctx, quoteCurrency, s.localCurrency)
}

// getOwned loads an investment and verifies ownership. A record owned by
// someone else is reported as not found rather than forbidden.
func (s *investmentService) getOwned(userID, investmentID string) (*models.Investment, error) {
	var investment models.Investment
	if err := s.db.Where("id = ?", investmentID).First(&investment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvestmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if investment.UserID != userID {
		return nil, apperrors.ErrInvestmentNotFound
	}
	return &investment, nil
}

// valuate maps one record plus its quote (if any) into a valuation.
func (s *investmentService) valuate(inv models.Investment, quotes map[string]marketdata.Quote, rate float64) portfolio.Valuation {
	quote, hasQuote := quotes[inv.CoinID]
	return portfolio.Valuate(inv, portfolio.Quote{
		PriceUSD:  quote.Price,
		Change24h: quote.Change24h,
	}, hasQuote, rate)
}
