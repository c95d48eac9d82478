package volatility

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/options-analytics/src/indicators"
	"github.com/jiaming2012/options-analytics/src/models"
)

var NoObservationErr = fmt.Errorf("no volatility observation at or before the requested time")

type Point struct {
	Timestamp time.Time
	Value     float64
}

type PointRecord struct {
	Timestamp  int64   `csv:"t"`
	Volatility float64 `csv:"volatility"`
}

// Series is ordered by Timestamp with no duplicates.
type Series []Point

func NewSeries(points []Point) Series {
	out := make(Series, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	deduped := out[:0]
	for _, p := range out {
		if len(deduped) > 0 && deduped[len(deduped)-1].Timestamp.Equal(p.Timestamp) {
			continue
		}

		deduped = append(deduped, p)
	}

	return deduped
}

// AsOf returns the latest observation with Timestamp <= t.
func (s Series) AsOf(t time.Time) (Point, error) {
	i := sort.Search(len(s), func(i int) bool {
		return s[i].Timestamp.After(t)
	})

	if i == 0 {
		return Point{}, fmt.Errorf("Series.AsOf: %s: %w", t.Format(time.RFC3339), NoObservationErr)
	}

	return s[i-1], nil
}

func (s Series) Records() []*PointRecord {
	records := make([]*PointRecord, 0, len(s))
	for _, p := range s {
		records = append(records, &PointRecord{Timestamp: p.Timestamp.Unix(), Volatility: p.Value})
	}

	return records
}

// FromCandles runs a realized volatility indicator over the candles and keeps
// every value emitted once the window is warm.
func FromCandles(candles models.Candles, window time.Duration, periodsPerYear float64) (Series, error) {
	if len(candles) == 0 {
		return nil, fmt.Errorf("FromCandles: %w", models.EmptySeriesErr)
	}

	sorted := candles.Sorted()
	if err := sorted.Validate(); err != nil {
		return nil, fmt.Errorf("FromCandles: %w", err)
	}

	rv := indicators.NewRealizedVolatility(window, periodsPerYear)

	var points []Point
	for _, c := range sorted {
		ready, vol, err := rv.Update(c)
		if err != nil {
			return nil, fmt.Errorf("FromCandles: %w", err)
		}

		if ready {
			points = append(points, Point{Timestamp: c.Timestamp, Value: vol})
		}
	}

	return points, nil
}

// Correlate pairs each point of s with the as-of value of other and returns
// the Pearson correlation over the pairs along with their count. Points of s
// that precede other are dropped.
func (s Series) Correlate(other Series) (float64, int, error) {
	var xs, ys []float64
	for _, p := range s {
		o, err := other.AsOf(p.Timestamp)
		if err != nil {
			if errors.Is(err, NoObservationErr) {
				continue
			}
			return 0, 0, fmt.Errorf("Series.Correlate: %w", err)
		}

		xs = append(xs, p.Value)
		ys = append(ys, o.Value)
	}

	if len(xs) < 2 {
		return 0, len(xs), fmt.Errorf("Series.Correlate: %d overlapping points: %w", len(xs), models.EmptySeriesErr)
	}

	c, err := stats.Correlation(xs, ys)
	if err != nil {
		return 0, len(xs), fmt.Errorf("Series.Correlate: %w", err)
	}

	return c, len(xs), nil
}
