package batch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-analytics/src/pricing"
)

var t0 = time.Date(2022, time.May, 27, 8, 0, 0, 0, time.UTC)

type anomalySolver struct {
	strike float64
	next   pricing.VolatilitySolver
}

func (s anomalySolver) Solve(q pricing.Quote) (pricing.IVResult, error) {
	if q.Strike == s.strike {
		return pricing.IVResult{}, &pricing.NumericAnomalyError{Quantity: "price_mid", Value: 0}
	}

	return s.next.Solve(q)
}

func validRows(t *testing.T, n int) []ContractRow {
	rows := make([]ContractRow, 0, n)
	for i := 0; i < n; i++ {
		row := ContractRow{
			Contract:        "BTC-1JUL22",
			Timestamp:       t0.Add(time.Duration(i) * time.Minute).Unix(),
			Expiration:      t0.Add(35 * 24 * time.Hour).Unix(),
			Strike:          15000 + float64(i%20)*500,
			IsCall:          i%2 == 0,
			UnderlyingClose: 20210,
			Volatility:      0.8,
		}

		q, err := row.ToQuote(Options{RiskFreeRate: 0.04})
		require.NoError(t, err)

		price, err := pricing.Price(q)
		require.NoError(t, err)
		row.Close = price

		rows = append(rows, row)
	}

	return rows
}

func TestEvaluate(t *testing.T) {
	t.Run("concrete scenario", func(t *testing.T) {
		rows := []ContractRow{{
			Contract:        "BTC-1JUL22-17000-P",
			Timestamp:       t0.Unix(),
			Expiration:      t0.Add(35*24*time.Hour + 12*time.Hour).Unix(),
			Strike:          17000,
			IsCall:          false,
			Close:           1000.8200300978551,
			UnderlyingClose: 20210,
			Volatility:      0.9835,
		}}

		report, err := NewEvaluator(nil, Options{RiskFreeRate: 0.04, Workers: 1}).Evaluate(context.Background(), rows)
		require.NoError(t, err)
		require.Len(t, report.Results, 1)
		require.Empty(t, report.Skipped)

		res := report.Results[0]
		assert.InDelta(t, 1000.8200300978551, res.FairValue, 1e-6)
		assert.InDelta(t, -0.23355327029874795, res.Delta, 1e-9)
		assert.InDelta(t, 0.9835, res.ImpliedVol, 1e-3)
		assert.True(t, res.IVConverged)
		assert.False(t, res.LowConfidence)
		assert.Equal(t, "BTC-1JUL22-17000-P", res.ContractID)
	})

	t.Run("batch integrity", func(t *testing.T) {
		rows := validRows(t, 1000)

		invalid := []int{3, 250, 251, 640, 999}
		rows[3].Strike = 0
		rows[250].Expiration = rows[250].Timestamp
		rows[251].Volatility = 0
		rows[640].UnderlyingClose = -1
		rows[999].Expiration = rows[999].Timestamp - 3600

		report, err := NewEvaluator(pricing.DefaultBisectionSolver(), Options{RiskFreeRate: 0.04, Workers: 4}).Evaluate(context.Background(), rows)
		require.NoError(t, err)

		assert.Len(t, report.Results, 995)
		require.Len(t, report.Skipped, 5)
		assert.Equal(t, 5, report.DomainErrors)
		assert.Equal(t, 0, report.NumericAnomalies)

		for i, s := range report.Skipped {
			assert.Equal(t, invalid[i], s.Index)
			assert.Equal(t, SkipDomainError, s.Kind)
			assert.ErrorIs(t, s.Reason, pricing.DomainErr)
		}

		for i := 1; i < len(report.Results); i++ {
			assert.Less(t, report.Results[i-1].Index, report.Results[i].Index)
		}

		assert.Len(t, report.Records(), 995)
		assert.Len(t, report.SkipRecords(), 5)
	})

	t.Run("worker count does not change output", func(t *testing.T) {
		rows := validRows(t, 137)
		rows[17].Strike = -5

		serial, err := NewEvaluator(nil, Options{RiskFreeRate: 0.04, Workers: 1}).Evaluate(context.Background(), rows)
		require.NoError(t, err)

		parallel, err := NewEvaluator(nil, Options{RiskFreeRate: 0.04, Workers: 8}).Evaluate(context.Background(), rows)
		require.NoError(t, err)

		assert.NotEqual(t, serial.RunID, parallel.RunID)
		assert.Equal(t, serial.Records(), parallel.Records())
		assert.Equal(t, serial.SkipRecords(), parallel.SkipRecords())
	})

	t.Run("non-converged rows are low confidence", func(t *testing.T) {
		rows := []ContractRow{{
			Contract:        "ATM-C",
			Timestamp:       t0.Unix(),
			Expiration:      t0.Add(364 * 24 * time.Hour).Unix(),
			Strike:          100,
			IsCall:          true,
			Close:           200,
			UnderlyingClose: 100,
			Volatility:      0.2,
		}}

		report, err := NewEvaluator(nil, Options{RiskFreeRate: 0.05}).Evaluate(context.Background(), rows)
		require.NoError(t, err)
		require.Len(t, report.Results, 1)

		res := report.Results[0]
		assert.True(t, res.LowConfidence)
		assert.True(t, res.IVClamped)
		assert.False(t, res.IVConverged)
		assert.Equal(t, 0.0001, res.ImpliedVol)
		assert.InDelta(t, 10.450583572185565, res.FairValue, 1e-9)
		assert.Equal(t, 1, report.LowConfidence)
	})

	t.Run("numeric anomalies are skipped", func(t *testing.T) {
		rows := validRows(t, 20)
		solver := anomalySolver{strike: 16000, next: pricing.DefaultBisectionSolver()}

		report, err := NewEvaluator(solver, Options{RiskFreeRate: 0.04, Workers: 3}).Evaluate(context.Background(), rows)
		require.NoError(t, err)

		assert.Len(t, report.Results, 19)
		require.Len(t, report.Skipped, 1)
		assert.Equal(t, 2, report.Skipped[0].Index)
		assert.Equal(t, SkipNumericAnomaly, report.Skipped[0].Kind)
		assert.Equal(t, 1, report.NumericAnomalies)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		report, err := NewEvaluator(nil, Options{Workers: 2}).Evaluate(ctx, validRows(t, 10))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, report)
	})

	t.Run("empty batch", func(t *testing.T) {
		report, err := NewEvaluator(nil, DefaultOptions()).Evaluate(context.Background(), nil)
		require.NoError(t, err)
		assert.Empty(t, report.Results)
		assert.Empty(t, report.Skipped)
	})
}
