package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"paisatrack/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestInvestment creates an active bitcoin lot with the default
// PKR-denominated figures: 100,000 invested for 0.01 BTC at a purchase rate
// of 280 PKR per USD.
func CreateTestInvestment(t *testing.T, db *gorm.DB, userID string) *models.Investment {
	t.Helper()
	return CreateTestInvestmentLot(t, db, userID, "bitcoin", 100000, 0.01)
}

// CreateTestInvestmentLot creates an active lot for the given coin with the
// given invested amount (PKR) and quantity.
func CreateTestInvestmentLot(t *testing.T, db *gorm.DB, userID, coinID string, investedAmount, quantity float64) *models.Investment {
	t.Helper()

	investment := &models.Investment{
		UserID:                 userID,
		CoinID:                 coinID,
		CoinName:               coinID,
		Symbol:                 coinID,
		InvestedAmount:         investedAmount,
		Quantity:               quantity,
		PurchasePriceLocal:     investedAmount / quantity,
		PurchasePriceUSD:       investedAmount / quantity / 280,
		PurchaseDate:           time.Now().Add(-24 * time.Hour),
		OriginalCurrency:       "PKR",
		ExchangeRateAtPurchase: 280,
		Status:                 models.InvestmentStatusActive,
	}
	if err := db.Create(investment).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return investment
}
