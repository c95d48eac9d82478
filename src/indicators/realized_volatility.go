package indicators

import (
	"fmt"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/jiaming2012/options-analytics/src/models"
)

type logReturn struct {
	timestamp time.Time
	value     float64
}

// RealizedVolatility is the annualized sample standard deviation of log
// returns over a trailing time window (t - Window, t].
type RealizedVolatility struct {
	Window         time.Duration
	PeriodsPerYear float64
	returns        []logReturn
	prevClose      float64
	prevTimestamp  time.Time
	hasPrev        bool
}

// Update consumes the next candle. It returns false until the window holds
// at least two returns, since a single return has no sample deviation.
func (v *RealizedVolatility) Update(c models.Candle) (bool, float64, error) {
	if !(c.Close > 0) {
		return false, 0, fmt.Errorf("RealizedVolatility.Update: close %v at %s: %w", c.Close, c.Timestamp.Format(time.RFC3339), models.InvalidCloseErr)
	}

	if v.hasPrev && !c.Timestamp.After(v.prevTimestamp) {
		return false, 0, fmt.Errorf("RealizedVolatility.Update: candle at %s is not after %s", c.Timestamp.Format(time.RFC3339), v.prevTimestamp.Format(time.RFC3339))
	}

	if !v.hasPrev {
		v.prevClose, v.prevTimestamp, v.hasPrev = c.Close, c.Timestamp, true
		return false, 0, nil
	}

	v.returns = append(v.returns, logReturn{
		timestamp: c.Timestamp,
		value:     math.Log(c.Close / v.prevClose),
	})
	v.prevClose, v.prevTimestamp = c.Close, c.Timestamp

	cutoff := c.Timestamp.Add(-v.Window)
	start := 0
	for start < len(v.returns) && !v.returns[start].timestamp.After(cutoff) {
		start++
	}
	v.returns = v.returns[start:]

	if len(v.returns) < 2 {
		return false, 0, nil
	}

	values := make([]float64, len(v.returns))
	for i, r := range v.returns {
		values[i] = r.value
	}

	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return false, 0, fmt.Errorf("failed to calculate the standard deviation: %v", err)
	}

	return true, sd * math.Sqrt(v.PeriodsPerYear), nil
}

func NewRealizedVolatility(window time.Duration, periodsPerYear float64) *RealizedVolatility {
	return &RealizedVolatility{
		Window:         window,
		PeriodsPerYear: periodsPerYear,
	}
}
