package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "paisatrack/internal/errors"
	"paisatrack/internal/pagination"
	"paisatrack/internal/services"
)

// InvestmentHandler handles investment and portfolio requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService}
}

// CreateInvestmentRequest represents the request payload for creating an investment.
type CreateInvestmentRequest struct {
	CoinID         string     `json:"coin_id" binding:"required,coin_id"`
	InvestedAmount float64    `json:"invested_amount" binding:"required,gt=0"`
	Quantity       float64    `json:"quantity" binding:"required,gt=0"`
	PurchaseDate   *time.Time `json:"purchase_date,omitempty"`
	Notes          string     `json:"notes" binding:"max=500"`
}

// SellInvestmentRequest represents the request payload for selling (part of) an investment.
type SellInvestmentRequest struct {
	SellQuantity   float64    `json:"sell_quantity" binding:"required,gt=0"`
	SellPriceLocal float64    `json:"sell_price_local" binding:"required,gt=0"`
	SellDate       *time.Time `json:"sell_date,omitempty"`
}

// CreateInvestment handles creating a new investment.
// @Summary     Create investment
// @Description Record a new cryptocurrency purchase lot
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateInvestmentRequest true "Investment details"
// @Success     201 {object} portfolio.Valuation "Investment created"
// @Failure     400 {object} ErrorResponse "Invalid input or unsupported coin"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments [post]
func (h *InvestmentHandler) CreateInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	valuation, err := h.investmentService.CreateInvestment(c.Request.Context(), userID, services.CreateInvestmentParams{
		CoinID:         req.CoinID,
		InvestedAmount: req.InvestedAmount,
		Quantity:       req.Quantity,
		PurchaseDate:   req.PurchaseDate,
		Notes:          req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"investment": valuation})
}

// ListInvestments handles listing enriched investments with the portfolio snapshot.
// @Summary     List enriched investments
// @Description Get all investments valued at current market prices, plus the portfolio snapshot and exchange rate
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.PortfolioView "Enriched investments and portfolio snapshot"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /investments [get]
func (h *InvestmentHandler) ListInvestments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	view, err := h.investmentService.ListEnrichedInvestments(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetInvestment handles retrieving a single enriched investment.
// @Summary     Get investment by ID
// @Description Get a specific investment valued at the current market price
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     200 {object} portfolio.Valuation "Investment details"
// @Failure     400 {object} ErrorResponse "Invalid investment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Router      /investments/{id} [get]
func (h *InvestmentHandler) GetInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	valuation, err := h.investmentService.GetInvestment(c.Request.Context(), userID, investmentID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investment": valuation})
}

// GetHistory handles listing raw investment records, paginated.
// @Summary     List investment records
// @Description Get a paginated list of raw investment records, including sold lots
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number (default 1)"
// @Param       page_size query int false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[models.Investment] "Paginated investments"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /investments/history [get]
func (h *InvestmentHandler) GetHistory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.investmentService.GetUserInvestments(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SellInvestment handles selling all or part of an investment.
// @Summary     Sell investment
// @Description Sell all or part of an investment lot; returns the updated record and a sale summary
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Investment ID"
// @Param       request body SellInvestmentRequest true "Sale details"
// @Success     200 {object} map[string]interface{} "Updated investment and sale summary"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient quantity"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Failure     409 {object} ErrorResponse "Already sold or concurrent modification"
// @Router      /investments/{id}/sell [post]
func (h *InvestmentHandler) SellInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SellInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	updated, summary, err := h.investmentService.SellInvestment(c.Request.Context(), userID, investmentID, services.SellInvestmentParams{
		SellQuantity:   req.SellQuantity,
		SellPriceLocal: req.SellPriceLocal,
		SellDate:       req.SellDate,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"investment": updated,
		"sale":       summary,
	})
}

// DeleteInvestment handles deleting an investment.
// @Summary     Delete investment
// @Description Soft-delete an investment record
// @Tags        investments
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Investment ID"
// @Success     204 "Investment deleted"
// @Failure     400 {object} ErrorResponse "Invalid investment ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Investment not found"
// @Router      /investments/{id} [delete]
func (h *InvestmentHandler) DeleteInvestment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	investmentID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.investmentService.DeleteInvestment(c.Request.Context(), userID, investmentID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// BatchPrices handles fetching quotes for a set of coins.
// @Summary     Batch coin prices
// @Description Get current USD prices and 24h change for a comma-separated set of coin ids
// @Tags        market
// @Produce     json
// @Security    BearerAuth
// @Param       coin_ids query string true "Comma-separated coin ids"
// @Success     200 {object} map[string]interface{} "Quote map keyed by coin id"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /market/prices [get]
func (h *InvestmentHandler) BatchPrices(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	coinIDs := strings.Split(c.Query("coin_ids"), ",")
	quotes := h.investmentService.BatchPrices(c.Request.Context(), coinIDs)

	c.JSON(http.StatusOK, gin.H{"prices": quotes})
}

// ExchangeRate handles fetching the current local-per-USD rate.
// @Summary     Current exchange rate
// @Description Get the local-currency-per-USD rate currently used for valuation
// @Tags        market
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string]interface{} "Exchange rate"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /market/exchange-rate [get]
func (h *InvestmentHandler) ExchangeRate(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	rate := h.investmentService.CurrentExchangeRate(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"exchange_rate": rate})
}
