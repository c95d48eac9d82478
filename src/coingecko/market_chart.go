package coingecko

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jiaming2012/options-analytics/src/models"
)

var MismatchedSeriesErr = fmt.Errorf("prices and total_volumes are not aligned")

// MarketChart is the body of /coins/{id}/market_chart/range. Each entry is
// [timestamp_ms, value].
type MarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

func (m *MarketChart) ToCandles() (models.Candles, error) {
	if len(m.Prices) == 0 {
		return nil, fmt.Errorf("MarketChart.ToCandles: %w", models.EmptySeriesErr)
	}

	if len(m.TotalVolumes) > 0 && len(m.TotalVolumes) != len(m.Prices) {
		return nil, fmt.Errorf("MarketChart.ToCandles: %d prices, %d volumes: %w", len(m.Prices), len(m.TotalVolumes), MismatchedSeriesErr)
	}

	candles := make(models.Candles, 0, len(m.Prices))
	for i, p := range m.Prices {
		// coingecko only reports a spot price per sample
		c := models.Candle{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Open:      p[1],
			High:      p[1],
			Low:       p[1],
			Close:     p[1],
		}

		if len(m.TotalVolumes) > 0 {
			c.Volume = m.TotalVolumes[i][1]
		}

		candles = append(candles, c)
	}

	return candles.Sorted(), nil
}

func LoadMarketChart(r io.Reader) (models.Candles, error) {
	var chart MarketChart
	if err := json.NewDecoder(r).Decode(&chart); err != nil {
		return nil, fmt.Errorf("LoadMarketChart: failed to decode: %w", err)
	}

	return chart.ToCandles()
}
