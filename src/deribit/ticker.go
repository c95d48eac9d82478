package deribit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jiaming2012/options-analytics/src/models"
)

type GreeksDTO struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
}

// TickerDTO is the result of public/ticker for an option. Prices are quoted
// in the underlying currency and mark_iv is in percent.
type TickerDTO struct {
	InstrumentName  string    `json:"instrument_name"`
	Timestamp       int64     `json:"timestamp"`
	Greeks          GreeksDTO `json:"greeks"`
	MarkIV          float64   `json:"mark_iv"`
	MarkPrice       float64   `json:"mark_price"`
	LastPrice       float64   `json:"last_price"`
	UnderlyingPrice float64   `json:"underlying_price"`
	IndexPrice      float64   `json:"index_price"`
}

// PremiumUSD converts the mark price, or the last price when there is no
// mark, into units of the quote currency.
func (t TickerDTO) PremiumUSD() float64 {
	if t.MarkPrice > 0 {
		return t.MarkPrice * t.UnderlyingPrice
	}

	return t.LastPrice * t.UnderlyingPrice
}

// Snapshot holds tickers ordered by instrument name.
type Snapshot []TickerDTO

// LoadSnapshot accepts a JSON object keyed by instrument name or a JSON array
// of tickers.
func LoadSnapshot(r io.Reader) (Snapshot, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("LoadSnapshot: failed to read: %w", err)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("LoadSnapshot: %w", models.EmptySeriesErr)
	}

	var snapshot Snapshot
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &snapshot); err != nil {
			return nil, fmt.Errorf("LoadSnapshot: failed to decode: %w", err)
		}
	} else {
		byName := map[string]TickerDTO{}
		if err := json.Unmarshal(raw, &byName); err != nil {
			return nil, fmt.Errorf("LoadSnapshot: failed to decode: %w", err)
		}

		for name, ticker := range byName {
			if ticker.InstrumentName == "" {
				ticker.InstrumentName = name
			}
			snapshot = append(snapshot, ticker)
		}
	}

	if len(snapshot) == 0 {
		return nil, fmt.Errorf("LoadSnapshot: %w", models.EmptySeriesErr)
	}

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].InstrumentName < snapshot[j].InstrumentName
	})

	return snapshot, nil
}
