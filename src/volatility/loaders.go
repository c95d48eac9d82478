package volatility

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	polygon "github.com/polygon-io/client-go/rest/models"

	"github.com/jiaming2012/options-analytics/src/models"
)

var MalformedRowErr = fmt.Errorf("malformed row")

// LoadPolygonAggregates decodes a saved Polygon aggregates response.
func LoadPolygonAggregates(r io.Reader) (models.Candles, error) {
	var resp polygon.GetAggsResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("LoadPolygonAggregates: failed to decode: %w", err)
	}

	if len(resp.Results) == 0 {
		return nil, fmt.Errorf("LoadPolygonAggregates: %s: %w", resp.Ticker, models.EmptySeriesErr)
	}

	candles := make(models.Candles, 0, len(resp.Results))
	for _, agg := range resp.Results {
		candles = append(candles, models.Candle{
			Timestamp:    time.Time(agg.Timestamp).UTC(),
			Open:         agg.Open,
			High:         agg.High,
			Low:          agg.Low,
			Close:        agg.Close,
			Volume:       agg.Volume,
			VWAP:         agg.VWAP,
			Transactions: agg.Transactions,
		})
	}

	return candles.Sorted(), nil
}

type volatilityIndexData struct {
	Data         [][]float64 `json:"data"`
	Continuation *int64      `json:"continuation"`
}

type volatilityIndexResponse struct {
	Result *volatilityIndexData `json:"result"`
	volatilityIndexData
}

// LoadDeribitVolIndex decodes Deribit volatility index candles, either the
// full JSON-RPC response or its bare result object. Rows are
// [timestamp_ms, open, high, low, close] with values in percent; the close
// is returned as a decimal volatility.
func LoadDeribitVolIndex(r io.Reader) (Series, error) {
	var resp volatilityIndexResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("LoadDeribitVolIndex: failed to decode: %w", err)
	}

	data := resp.volatilityIndexData
	if resp.Result != nil {
		data = *resp.Result
	}

	if len(data.Data) == 0 {
		return nil, fmt.Errorf("LoadDeribitVolIndex: %w", models.EmptySeriesErr)
	}

	points := make([]Point, 0, len(data.Data))
	for i, row := range data.Data {
		if len(row) < 5 {
			return nil, fmt.Errorf("LoadDeribitVolIndex: row %d has %d fields: %w", i, len(row), MalformedRowErr)
		}

		if !(row[4] > 0) {
			return nil, fmt.Errorf("LoadDeribitVolIndex: row %d has close %v: %w", i, row[4], MalformedRowErr)
		}

		points = append(points, Point{
			Timestamp: time.UnixMilli(int64(row[0])).UTC(),
			Value:     row[4] / 100,
		})
	}

	return NewSeries(points), nil
}
