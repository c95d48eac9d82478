package batch

import (
	"errors"
	"fmt"

	"github.com/jiaming2012/options-analytics/src/volatility"
)

// FillVolatility returns a copy of rows in which every row with a zero
// volatility takes the latest series value at or before its timestamp.
// Rows with no earlier observation are left at zero and will be skipped
// by the evaluator.
func FillVolatility(rows []ContractRow, series volatility.Series) ([]ContractRow, int, error) {
	out := make([]ContractRow, len(rows))
	copy(out, rows)

	filled := 0
	for i := range out {
		if out[i].Volatility != 0 {
			continue
		}

		p, err := series.AsOf(out[i].Time())
		if err != nil {
			if errors.Is(err, volatility.NoObservationErr) {
				continue
			}

			return nil, 0, fmt.Errorf("FillVolatility: row %d: %w", i, err)
		}

		out[i].Volatility = p.Value
		filled++
	}

	return out, filled, nil
}
