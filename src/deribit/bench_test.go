package deribit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-analytics/src/pricing"
)

func TestLoadSnapshot(t *testing.T) {
	t.Run("keyed by instrument", func(t *testing.T) {
		payload := `{
			"BTC-1JUL22-22000-C": {"greeks": {"delta": 0.41, "gamma": 0.00004, "vega": 26.1, "theta": -41.2, "rho": 6.1}, "mark_iv": 82.5, "mark_price": 0.071, "last_price": 0.07, "underlying_price": 20210},
			"BTC-1JUL22-17000-P": {"instrument_name": "BTC-1JUL22-17000-P", "mark_iv": 98.35, "mark_price": 0.0495, "underlying_price": 20210}
		}`

		snapshot, err := LoadSnapshot(strings.NewReader(payload))
		require.NoError(t, err)
		require.Len(t, snapshot, 2)

		assert.Equal(t, "BTC-1JUL22-17000-P", snapshot[0].InstrumentName)
		assert.Equal(t, "BTC-1JUL22-22000-C", snapshot[1].InstrumentName)
		assert.Equal(t, 0.41, snapshot[1].Greeks.Delta)
		assert.InDelta(t, 0.071*20210, snapshot[1].PremiumUSD(), 1e-9)
	})

	t.Run("array", func(t *testing.T) {
		payload := `[{"instrument_name": "BTC-1JUL22-22000-C", "mark_price": 0, "last_price": 0.07, "underlying_price": 20000}]`

		snapshot, err := LoadSnapshot(strings.NewReader(payload))
		require.NoError(t, err)
		require.Len(t, snapshot, 1)
		assert.InDelta(t, 1400.0, snapshot[0].PremiumUSD(), 1e-9)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := LoadSnapshot(strings.NewReader(`{}`))
		assert.Error(t, err)
	})
}

func TestBench(t *testing.T) {
	asOf := time.Date(2022, time.May, 26, 20, 0, 0, 0, time.UTC)
	expiry := 36.0 / 365.0
	underlying := 20210.0

	contracts := []struct {
		name   string
		strike float64
		typ    pricing.OptionType
		vol    float64
	}{
		{"BTC-1JUL22-18000-P", 18000, pricing.Put, 0.95},
		{"BTC-1JUL22-20000-C", 20000, pricing.Call, 0.8},
		{"BTC-1JUL22-21000-P", 21000, pricing.Put, 0.75},
		{"BTC-1JUL22-23000-C", 23000, pricing.Call, 0.7},
	}

	var snapshot Snapshot
	for _, c := range contracts {
		g, err := pricing.ComputeGreeks(pricing.Quote{
			Underlying: underlying,
			Strike:     c.strike,
			Rate:       0.04,
			Expiry:     expiry,
			Volatility: c.vol,
			Type:       c.typ,
		})
		require.NoError(t, err)

		snapshot = append(snapshot, TickerDTO{
			InstrumentName:  c.name,
			Greeks:          GreeksDTO{Delta: g.Delta, Gamma: g.Gamma, Vega: g.Vega, Theta: g.Theta, Rho: g.Rho},
			MarkIV:          c.vol * 100,
			MarkPrice:       g.FairValue / underlying,
			UnderlyingPrice: underlying,
		})
	}

	snapshot = append(snapshot,
		TickerDTO{InstrumentName: "BTC-PERPETUAL", UnderlyingPrice: underlying},
		TickerDTO{InstrumentName: "BTC-20MAY22-20000-C", MarkIV: 80, MarkPrice: 0.01, UnderlyingPrice: underlying},
	)

	t.Run("identical inputs correlate perfectly", func(t *testing.T) {
		report, err := Bench(snapshot, BenchOptions{AsOf: asOf, RiskFreeRate: 0.04})
		require.NoError(t, err)

		require.Len(t, report.Rows, 4)
		require.Len(t, report.Skipped, 2)
		assert.ErrorIs(t, report.Skipped[0].Reason, InvalidInstrumentErr)
		assert.ErrorIs(t, report.Skipped[1].Reason, pricing.DomainErr)

		for _, row := range report.Rows {
			assert.InDelta(t, row.Exchange.Delta, row.Engine.Delta, 1e-12)
			assert.InDelta(t, row.ExchangeIV, row.Engine.ImpliedVol, 1e-3)
		}

		require.Len(t, report.Correlations, 6)
		for _, c := range report.Correlations {
			assert.InDelta(t, 1.0, c.Value, 1e-3, c.Field)
		}

		assert.Contains(t, report.String(), "BTC-1JUL22-20000-C")
	})

	t.Run("calls only", func(t *testing.T) {
		report, err := Bench(snapshot, BenchOptions{AsOf: asOf, RiskFreeRate: 0.04, CallsOnly: true})
		require.NoError(t, err)

		require.Len(t, report.Rows, 2)
		for _, row := range report.Rows {
			assert.True(t, strings.HasSuffix(row.Instrument, "-C"))
		}
	})
}
