package models

import (
	"fmt"
	"sort"
	"time"
)

type Candle struct {
	Timestamp    time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	VWAP         float64
	Transactions int64
}

type Candles []Candle

// Sorted returns a copy ordered by timestamp with duplicate timestamps
// removed, keeping the first occurrence.
func (c Candles) Sorted() Candles {
	out := make(Candles, len(c))
	copy(out, c)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	deduped := out[:0]
	for i, candle := range out {
		if i > 0 && candle.Timestamp.Equal(deduped[len(deduped)-1].Timestamp) {
			continue
		}

		deduped = append(deduped, candle)
	}

	return deduped
}

func (c Candles) Validate() error {
	for i, candle := range c {
		if !(candle.Close > 0) {
			return fmt.Errorf("Candles.Validate: candle %d at %s has non-positive close %v: %w", i, candle.Timestamp.Format(time.RFC3339), candle.Close, InvalidCloseErr)
		}
	}

	return nil
}
