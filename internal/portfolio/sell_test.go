package portfolio

import (
	"testing"
	"time"

	"paisatrack/internal/models"
	"paisatrack/internal/testutil"
)

func TestProcessSellFullSellIsTerminal(t *testing.T) {
	inv := pkrLot(100000, 0.01)
	sellDate := time.Now()

	updated, summary, err := ProcessSell(inv, 0.01, 12000000, 280, sellDate)
	testutil.AssertNoError(t, err)

	if updated.Status != models.InvestmentStatusSold {
		t.Fatalf("expected status sold, got %q", updated.Status)
	}
	// The lot keeps its historical size on the record.
	testutil.AssertClose(t, 0.01, updated.Quantity, "stored quantity")
	testutil.AssertClose(t, 100000, updated.InvestedAmount, "stored invested amount")
	testutil.AssertClose(t, 20000, updated.RealizedProfitLoss, "realized profit/loss")
	testutil.AssertClose(t, 20, updated.RealizedProfitLossPercentage, "realized percentage")
	if updated.SellDate == nil || !updated.SellDate.Equal(sellDate) {
		t.Errorf("expected sell date %v, got %v", sellDate, updated.SellDate)
	}

	testutil.AssertClose(t, 120000, summary.SoldAmountLocal, "sold amount local")
	testutil.AssertClose(t, 0, summary.RemainingQuantity, "remaining quantity")
	testutil.AssertClose(t, 0, summary.RemainingInvestedAmount, "remaining invested")
}

func TestProcessSellPartialSplitsCostBasisProRata(t *testing.T) {
	// Sell 0.004 of a 0.01 BTC lot (100,000 PKR basis) at 11,000,000 PKR.
	inv := pkrLot(100000, 0.01)

	updated, summary, err := ProcessSell(inv, 0.004, 11000000, 280, time.Now())
	testutil.AssertNoError(t, err)

	testutil.AssertClose(t, 40000, summary.InvestedPortionLocal, "invested portion")
	testutil.AssertClose(t, 44000, summary.SoldAmountLocal, "sale proceeds")
	testutil.AssertClose(t, 4000, summary.RealizedProfitLossLocal, "realized profit/loss")
	testutil.AssertClose(t, 10, summary.RealizedProfitLossPercentage, "realized percentage")
	testutil.AssertClose(t, 0.006, summary.RemainingQuantity, "remaining quantity")
	testutil.AssertClose(t, 60000, summary.RemainingInvestedAmount, "remaining invested")

	if updated.Status != models.InvestmentStatusPartial {
		t.Fatalf("expected status partial, got %q", updated.Status)
	}
	testutil.AssertClose(t, 0.006, updated.Quantity, "stored quantity")
	testutil.AssertClose(t, 60000, updated.InvestedAmount, "stored invested amount")
	// The unit cost of the remainder is unchanged.
	testutil.AssertClose(t, 10000000, updated.PurchasePriceLocal, "purchase price local")
}

func TestProcessSellAccumulatesRealizedAcrossPartials(t *testing.T) {
	inv := pkrLot(100000, 0.01)

	first, _, err := ProcessSell(inv, 0.004, 11000000, 280, time.Now())
	testutil.AssertNoError(t, err)

	second, summary, err := ProcessSell(first, 0.006, 11000000, 280, time.Now())
	testutil.AssertNoError(t, err)

	if second.Status != models.InvestmentStatusSold {
		t.Fatalf("expected status sold after remainder sold, got %q", second.Status)
	}
	testutil.AssertClose(t, 0.01, second.SellQuantity, "cumulative sell quantity")
	// 4,000 from the first sell plus 6,000 from the second.
	testutil.AssertClose(t, 10000, second.RealizedProfitLoss, "cumulative realized profit/loss")
	testutil.AssertClose(t, 10, second.RealizedProfitLossPercentage, "cumulative realized percentage")
	testutil.AssertClose(t, 6000, summary.RealizedProfitLossLocal, "second sale realized")
}

func TestProcessSellConvertsProceedsToUSD(t *testing.T) {
	inv := pkrLot(100000, 0.01)

	_, summary, err := ProcessSell(inv, 0.004, 11000000, 275, time.Now())
	testutil.AssertNoError(t, err)

	// Proceeds use the current rate, the cost basis the purchase-time rate.
	testutil.AssertClose(t, 44000/275.0, summary.SoldAmountUSD, "sold amount usd")
	testutil.AssertClose(t, 40000/280.0, summary.InvestedPortionUSD, "invested portion usd")
	testutil.AssertClose(t, 44000/275.0-40000/280.0, summary.RealizedProfitLossUSD, "realized usd")
}

func TestProcessSellRejectsOversell(t *testing.T) {
	inv := pkrLot(100000, 0.01)

	_, _, err := ProcessSell(inv, 0.02, 11000000, 280, time.Now())
	testutil.AssertAppError(t, err, "INSUFFICIENT_QUANTITY")
}

func TestProcessSellRejectsSoldLot(t *testing.T) {
	inv := pkrLot(100000, 0.01)
	inv.Status = models.InvestmentStatusSold

	_, _, err := ProcessSell(inv, 0.001, 11000000, 280, time.Now())
	testutil.AssertAppError(t, err, "INVESTMENT_ALREADY_SOLD")
}

func TestProcessSellRejectsNonPositiveInputs(t *testing.T) {
	inv := pkrLot(100000, 0.01)

	_, _, err := ProcessSell(inv, 0, 11000000, 280, time.Now())
	testutil.AssertAppError(t, err, "INVALID_INPUT")

	_, _, err = ProcessSell(inv, 0.001, 0, 280, time.Now())
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
