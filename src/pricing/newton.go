package pricing

import "math"

// NewtonSolver is the derivative based alternative to BisectionSolver. It
// stops without converging when vega vanishes, which is common close to expiry.
type NewtonSolver struct {
	Initial       float64
	MaxIterations int
	Tolerance     float64
	Lower         float64
	Upper         float64
}

func DefaultNewtonSolver() NewtonSolver {
	return NewtonSolver{
		Initial:       1.0,
		MaxIterations: 200,
		Tolerance:     0.0001,
		Lower:         0.0001,
		Upper:         500.0,
	}
}

const minVega = 1e-12

func (n NewtonSolver) clamp(v float64) (float64, bool) {
	if v < n.Lower {
		return n.Lower, true
	}

	if v > n.Upper {
		return n.Upper, true
	}

	return v, false
}

func (n NewtonSolver) Solve(q Quote) (IVResult, error) {
	if err := q.validateForInversion(); err != nil {
		return IVResult{}, err
	}

	m := newKernel(q)
	target := q.MarketPrice
	vOld, clamped := n.clamp(n.Initial)

	for iteration := 1; iteration <= n.MaxIterations; iteration++ {
		e := m.at(vOld)
		price := m.payoff.price(e)
		vega := e.rawVega()
		if !isFinite(price) {
			return IVResult{}, &NumericAnomalyError{Quantity: "price", Value: price}
		}

		if !(vega > minVega) {
			return IVResult{Volatility: vOld, Iterations: iteration, Clamped: clamped}, nil
		}

		vNew, hitBound := n.clamp(vOld - (price-target)/vega)
		if math.Abs(vOld-vNew) < n.Tolerance || math.Abs(price-target) < n.Tolerance {
			return IVResult{Volatility: vNew, Iterations: iteration, Converged: !hitBound, Clamped: hitBound}, nil
		}

		vOld, clamped = vNew, hitBound
	}

	return IVResult{Volatility: vOld, Iterations: n.MaxIterations, Clamped: clamped}, nil
}
