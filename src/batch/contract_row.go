package batch

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jiaming2012/options-analytics/src/pricing"
)

const daysPerYear = 365.0

// ContractRow is one observation of an option contract joined with its
// underlying close and volatility. Timestamps are unix seconds.
type ContractRow struct {
	Contract        string  `csv:"contract"`
	Timestamp       int64   `csv:"t"`
	Expiration      int64   `csv:"expiration"`
	Strike          float64 `csv:"strike"`
	IsCall          bool    `csv:"is_call"`
	Open            float64 `csv:"c_open"`
	High            float64 `csv:"c_high"`
	Low             float64 `csv:"c_low"`
	Close           float64 `csv:"c_close"`
	Volume          float64 `csv:"c_volume"`
	UnderlyingClose float64 `csv:"u_close"`
	Volatility      float64 `csv:"volatility"`
	// RiskFreeRate overrides Options.RiskFreeRate when non-empty.
	RiskFreeRate string `csv:"risk_free_rate"`
}

func (r ContractRow) Time() time.Time {
	return time.Unix(r.Timestamp, 0).UTC()
}

func (r ContractRow) ExpirationTime() time.Time {
	return time.Unix(r.Expiration, 0).UTC()
}

// YearsToExpiry counts whole days to expiration plus one, so any contract
// that has not expired is priced with at least one day left.
func YearsToExpiry(timestamp, expiration time.Time) (float64, error) {
	days := expiration.Sub(timestamp).Hours() / 24
	if !expiration.After(timestamp) {
		return 0, &pricing.DomainError{Field: "T", Value: days, Constraint: "expiration > timestamp"}
	}

	return (math.Floor(days) + 1) / daysPerYear, nil
}

func (r ContractRow) rate(opts Options) (float64, error) {
	s := strings.TrimSpace(r.RiskFreeRate)
	if s == "" {
		return opts.RiskFreeRate, nil
	}

	rate, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &pricing.DomainError{Field: "risk_free_rate", Value: math.NaN(), Constraint: "numeric"}
	}

	return rate, nil
}

func (r ContractRow) ToQuote(opts Options) (pricing.Quote, error) {
	expiry, err := YearsToExpiry(r.Time(), r.ExpirationTime())
	if err != nil {
		return pricing.Quote{}, err
	}

	rate, err := r.rate(opts)
	if err != nil {
		return pricing.Quote{}, err
	}

	marketPrice := r.Close
	if opts.PremiumInUnderlying {
		marketPrice *= r.UnderlyingClose
	}

	return pricing.Quote{
		Underlying:  r.UnderlyingClose,
		Strike:      r.Strike,
		Rate:        rate,
		Dividend:    opts.DividendRate,
		Expiry:      expiry,
		Volatility:  r.Volatility,
		MarketPrice: marketPrice,
		Type:        pricing.OptionTypeFromIsCall(r.IsCall),
	}, nil
}
