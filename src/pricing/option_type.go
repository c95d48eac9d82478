package pricing

import (
	"fmt"
	"strings"
)

type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	default:
		return fmt.Sprintf("OptionType(%d)", int(t))
	}
}

// ParseOptionType accepts the exchange short form (C/P) as well as call/put.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "call":
		return Call, nil
	case "p", "put":
		return Put, nil
	default:
		return 0, fmt.Errorf("ParseOptionType: unknown option type %q", s)
	}
}

func OptionTypeFromIsCall(isCall bool) OptionType {
	if isCall {
		return Call
	}

	return Put
}

func (t OptionType) payoff() payoff {
	if t == Put {
		return putPayoff{}
	}

	return callPayoff{}
}

// payoff holds the formulas that differ between calls and puts. Everything
// shared (gamma, vega, d1/d2) lives on evaluation.
type payoff interface {
	price(e evaluation) float64
	delta(e evaluation) float64
	thetaPerYear(e evaluation) float64
	rho(e evaluation) float64
}

type callPayoff struct{}

func (callPayoff) price(e evaluation) float64 {
	return e.s*e.carry*normCdf(e.d1) - e.k*e.discount*normCdf(e.d2)
}

func (callPayoff) delta(e evaluation) float64 {
	return e.carry * normCdf(e.d1)
}

func (callPayoff) thetaPerYear(e evaluation) float64 {
	return e.timeDecay() - e.r*e.k*e.discount*normCdf(e.d2) + e.q*e.s*e.carry*normCdf(e.d1)
}

func (callPayoff) rho(e evaluation) float64 {
	return e.k * e.t * e.discount * normCdf(e.d2) / 100
}

type putPayoff struct{}

func (putPayoff) price(e evaluation) float64 {
	return e.k*e.discount*normCdf(-e.d2) - e.s*e.carry*normCdf(-e.d1)
}

func (putPayoff) delta(e evaluation) float64 {
	return e.carry * (normCdf(e.d1) - 1)
}

func (putPayoff) thetaPerYear(e evaluation) float64 {
	return e.timeDecay() + e.r*e.k*e.discount*normCdf(-e.d2) - e.q*e.s*e.carry*normCdf(-e.d1)
}

func (putPayoff) rho(e evaluation) float64 {
	return -e.k * e.t * e.discount * normCdf(-e.d2) / 100
}
