package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCandles(t *testing.T) {
	t0 := time.Date(2022, time.July, 1, 0, 0, 0, 0, time.UTC)

	t.Run("sorted removes duplicate timestamps", func(t *testing.T) {
		candles := Candles{
			{Timestamp: t0.Add(2 * time.Hour), Close: 3},
			{Timestamp: t0, Close: 1},
			{Timestamp: t0.Add(time.Hour), Close: 2},
			{Timestamp: t0, Close: 99},
		}

		sorted := candles.Sorted()

		assert.Len(t, sorted, 3)
		assert.Equal(t, 1.0, sorted[0].Close)
		assert.Equal(t, 2.0, sorted[1].Close)
		assert.Equal(t, 3.0, sorted[2].Close)
		assert.Equal(t, 3.0, candles[0].Close, "input must not be reordered")
	})

	t.Run("validate rejects non positive closes", func(t *testing.T) {
		assert.NoError(t, Candles{{Timestamp: t0, Close: 1}}.Validate())
		assert.ErrorIs(t, Candles{{Timestamp: t0, Close: 1}, {Timestamp: t0, Close: 0}}.Validate(), InvalidCloseErr)
	})
}
