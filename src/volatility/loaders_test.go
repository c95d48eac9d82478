package volatility

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaming2012/options-analytics/src/models"
)

func TestLoadPolygonAggregates(t *testing.T) {
	t.Run("decodes results", func(t *testing.T) {
		payload := `{
			"ticker": "X:BTCUSD",
			"status": "OK",
			"results": [
				{"v": 10, "vw": 20310.5, "o": 20250, "c": 20400, "h": 20450, "l": 20200, "t": 1656637200000, "n": 280},
				{"v": 12.5, "vw": 20220.1, "o": 20100, "c": 20250, "h": 20300, "l": 20050, "t": 1656633600000, "n": 310}
			]
		}`

		candles, err := LoadPolygonAggregates(strings.NewReader(payload))
		require.NoError(t, err)
		require.Len(t, candles, 2)

		assert.Equal(t, time.Date(2022, time.July, 1, 0, 0, 0, 0, time.UTC), candles[0].Timestamp)
		assert.Equal(t, 20250.0, candles[0].Close)
		assert.Equal(t, 20220.1, candles[0].VWAP)
		assert.Equal(t, int64(310), candles[0].Transactions)
		assert.Equal(t, 20400.0, candles[1].Close)
	})

	t.Run("no results", func(t *testing.T) {
		_, err := LoadPolygonAggregates(strings.NewReader(`{"ticker": "X:BTCUSD", "results": []}`))
		assert.ErrorIs(t, err, models.EmptySeriesErr)
	})

	t.Run("bad json", func(t *testing.T) {
		_, err := LoadPolygonAggregates(strings.NewReader(`{"results": [`))
		assert.Error(t, err)
	})
}

func TestLoadDeribitVolIndex(t *testing.T) {
	t.Run("json-rpc envelope", func(t *testing.T) {
		payload := `{"jsonrpc": "2.0", "result": {"data": [[1656633600000, 80.1, 82.0, 79.5, 81.5], [1656637200000, 81.5, 83.0, 81.0, 82.25]], "continuation": null}}`

		series, err := LoadDeribitVolIndex(strings.NewReader(payload))
		require.NoError(t, err)
		require.Len(t, series, 2)
		assert.InDelta(t, 0.815, series[0].Value, 1e-12)
		assert.InDelta(t, 0.8225, series[1].Value, 1e-12)
		assert.Equal(t, time.Date(2022, time.July, 1, 1, 0, 0, 0, time.UTC), series[1].Timestamp)
	})

	t.Run("bare result", func(t *testing.T) {
		payload := `{"data": [[1656637200000, 81.5, 83.0, 81.0, 82.25], [1656633600000, 80.1, 82.0, 79.5, 81.5]], "continuation": 1656630000000}`

		series, err := LoadDeribitVolIndex(strings.NewReader(payload))
		require.NoError(t, err)
		require.Len(t, series, 2)
		assert.True(t, series[0].Timestamp.Before(series[1].Timestamp))
	})

	t.Run("short row", func(t *testing.T) {
		_, err := LoadDeribitVolIndex(strings.NewReader(`{"data": [[1656633600000, 80.1]]}`))
		assert.ErrorIs(t, err, MalformedRowErr)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := LoadDeribitVolIndex(strings.NewReader(`{"data": []}`))
		assert.ErrorIs(t, err, models.EmptySeriesErr)
	})
}
