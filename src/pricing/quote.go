package pricing

import "math"

// Quote is a single contract observation. Expiry is in years, Volatility is
// annualized, Rate and Dividend are continuously compounded.
type Quote struct {
	Underlying  float64
	Strike      float64
	Rate        float64
	Dividend    float64
	Expiry      float64
	Volatility  float64
	MarketPrice float64
	Type        OptionType
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func positive(field string, value float64) error {
	if !(value > 0) || math.IsInf(value, 1) {
		return &DomainError{Field: field, Value: value, Constraint: field + " > 0"}
	}

	return nil
}

func finite(field string, value float64) error {
	if !isFinite(value) {
		return &DomainError{Field: field, Value: value, Constraint: field + " finite"}
	}

	return nil
}

// validateContract checks the fields shared by pricing and inversion.
func (q Quote) validateContract() error {
	if err := positive("expiry", q.Expiry); err != nil {
		return err
	}

	if err := positive("underlying", q.Underlying); err != nil {
		return err
	}

	if err := positive("strike", q.Strike); err != nil {
		return err
	}

	if err := finite("rate", q.Rate); err != nil {
		return err
	}

	return finite("dividend", q.Dividend)
}

func (q Quote) validateForPricing() error {
	if err := q.validateContract(); err != nil {
		return err
	}

	return positive("volatility", q.Volatility)
}

func (q Quote) validateForInversion() error {
	if err := q.validateContract(); err != nil {
		return err
	}

	if err := finite("market_price", q.MarketPrice); err != nil {
		return err
	}

	if q.MarketPrice < 0 {
		return &DomainError{Field: "market_price", Value: q.MarketPrice, Constraint: "market_price >= 0"}
	}

	return nil
}
