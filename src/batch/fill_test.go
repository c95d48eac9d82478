package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-analytics/src/volatility"
)

func TestFillVolatility(t *testing.T) {
	series := volatility.NewSeries([]volatility.Point{
		{Timestamp: t0, Value: 0.75},
		{Timestamp: t0.Add(time.Hour), Value: 0.8},
	})

	rows := []ContractRow{
		{Contract: "before", Timestamp: t0.Add(-time.Minute).Unix()},
		{Contract: "first", Timestamp: t0.Add(30 * time.Minute).Unix()},
		{Contract: "given", Timestamp: t0.Add(30 * time.Minute).Unix(), Volatility: 0.5},
		{Contract: "second", Timestamp: t0.Add(2 * time.Hour).Unix()},
	}

	filled, n, err := FillVolatility(rows, series)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, 0.0, filled[0].Volatility)
	assert.Equal(t, 0.75, filled[1].Volatility)
	assert.Equal(t, 0.5, filled[2].Volatility)
	assert.Equal(t, 0.8, filled[3].Volatility)

	assert.Equal(t, 0.0, rows[1].Volatility, "input rows are not modified")
}
