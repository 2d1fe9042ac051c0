package marketdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeRateSource scripts FetchRates responses and counts calls.
type fakeRateSource struct {
	name  string
	rates map[string]float64
	err   error
	calls int
}

func (f *fakeRateSource) Name() string { return f.name }

func (f *fakeRateSource) FetchRates(ctx context.Context) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func TestFXServiceIdentityPairSkipsSources(t *testing.T) {
	source := &fakeRateSource{name: "primary", rates: map[string]float64{"USD": 1, "PKR": 280}}
	svc := NewFXService(time.Hour, testLogger(), source)

	assert.Equal(t, 1.0, svc.GetRate(context.Background(), "PKR", "pkr"))
	assert.Equal(t, 2500.0, svc.Convert(context.Background(), 2500, "PKR", "PKR"))
	assert.Equal(t, 0, source.calls)
}

func TestFXServiceGetRateFromTable(t *testing.T) {
	source := &fakeRateSource{name: "primary", rates: map[string]float64{"USD": 1, "PKR": 280, "EUR": 0.9}}
	svc := NewFXService(time.Hour, testLogger(), source)

	assert.Equal(t, 280.0, svc.GetRate(context.Background(), "USD", "PKR"))
	assert.InDelta(t, 1/280.0, svc.GetRate(context.Background(), "PKR", "USD"), 1e-12)
	// Cross rate goes through USD.
	assert.InDelta(t, 280.0/0.9, svc.GetRate(context.Background(), "EUR", "PKR"), 1e-9)
	assert.Equal(t, 1, source.calls)
}

func TestFXServiceConvertRoundTrips(t *testing.T) {
	source := &fakeRateSource{name: "primary", rates: map[string]float64{"USD": 1, "PKR": 280}}
	svc := NewFXService(time.Hour, testLogger(), source)

	usd := svc.Convert(context.Background(), 28000, "PKR", "USD")
	assert.InDelta(t, 100, usd, 1e-9)

	back := svc.Convert(context.Background(), usd, "USD", "PKR")
	assert.InDelta(t, 28000, back, 1e-9)
}

func TestFXServiceFallsThroughToSecondarySource(t *testing.T) {
	primary := &fakeRateSource{name: "primary", err: errors.New("down")}
	secondary := &fakeRateSource{name: "secondary", rates: map[string]float64{"USD": 1, "PKR": 275}}
	svc := NewFXService(time.Hour, testLogger(), primary, secondary)

	assert.Equal(t, 275.0, svc.GetRate(context.Background(), "USD", "PKR"))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFXServiceServesStaleTableWhenAllSourcesFail(t *testing.T) {
	source := &fakeRateSource{name: "primary", rates: map[string]float64{"USD": 1, "PKR": 275}}
	svc := NewFXService(time.Nanosecond, testLogger(), source)

	assert.Equal(t, 275.0, svc.GetRate(context.Background(), "USD", "PKR"))
	time.Sleep(time.Millisecond)
	source.err = errors.New("down")

	assert.Equal(t, 275.0, svc.GetRate(context.Background(), "USD", "PKR"))
}

func TestFXServiceStaticFallbackWhenCold(t *testing.T) {
	source := &fakeRateSource{name: "primary", err: errors.New("down")}
	svc := NewFXService(time.Hour, testLogger(), source)

	assert.Equal(t, staticRates["PKR"], svc.GetRate(context.Background(), "USD", "PKR"))
}

func TestFXServiceUnknownCurrencyDegradesToIdentity(t *testing.T) {
	source := &fakeRateSource{name: "primary", rates: map[string]float64{"USD": 1, "PKR": 280}}
	svc := NewFXService(time.Hour, testLogger(), source)

	assert.Equal(t, 1.0, svc.GetRate(context.Background(), "USD", "ZZZ"))
	assert.Equal(t, 1234.0, svc.Convert(context.Background(), 1234, "ZZZ", "USD"))
}

func TestFXServiceStaticFallbackCoversMissingPair(t *testing.T) {
	// The fetched table lacks BDT; lookup falls back to the static table
	// for that leg only.
	source := &fakeRateSource{name: "primary", rates: map[string]float64{"USD": 1, "PKR": 280}}
	svc := NewFXService(time.Hour, testLogger(), source)

	rate := svc.GetRate(context.Background(), "USD", "BDT")
	assert.Equal(t, staticRates["BDT"], rate)
}

func TestFXServiceCachesTableWithinTTL(t *testing.T) {
	source := &fakeRateSource{name: "primary", rates: map[string]float64{"USD": 1, "PKR": 280}}
	svc := NewFXService(time.Hour, testLogger(), source)

	svc.GetRate(context.Background(), "USD", "PKR")
	svc.GetRate(context.Background(), "USD", "EUR")
	svc.Convert(context.Background(), 10, "USD", "PKR")

	assert.Equal(t, 1, source.calls)
}
