package pricing

import (
	"fmt"
	"math"
)

type IVResult struct {
	Volatility float64
	Iterations int
	Converged  bool
	// Clamped is set when the search ran into a bracket boundary and the
	// returned volatility is that boundary rather than a root.
	Clamped bool
}

// Err returns nil for a converged result and a NonConvergenceErr otherwise.
func (r IVResult) Err() error {
	if r.Converged {
		return nil
	}

	return fmt.Errorf("%w: stopped at vol=%v after %d iterations (clamped=%t)", NonConvergenceErr, r.Volatility, r.Iterations, r.Clamped)
}

type VolatilitySolver interface {
	// Solve returns the volatility that reprices q at q.MarketPrice.
	// q.Volatility is ignored.
	Solve(q Quote) (IVResult, error)
}

// BisectionSolver brackets the volatility between Lower and Upper and halves
// the bracket until the repriced contract is within Precision of the market.
//
// Calls and puts terminate differently. The call search compares against the
// price at the lower bound and gives up (returning Lower) once the midpoint
// drifts within UpperMargin of Upper, which happens when the market price is
// above anything the model can produce. The put search compares against the
// price at the upper bound and returns its last midpoint after
// PutMaxIterations. MaxIterations caps both branches.
type BisectionSolver struct {
	Lower            float64
	Upper            float64
	Precision        float64
	PutMaxIterations int
	MaxIterations    int
	UpperMargin      float64
}

func DefaultBisectionSolver() BisectionSolver {
	return BisectionSolver{
		Lower:            0.0001,
		Upper:            500.0,
		Precision:        0.00001,
		PutMaxIterations: 50,
		MaxIterations:    200,
		UpperMargin:      5,
	}
}

// ImpliedVolatility inverts q.MarketPrice with the default bisection solver.
func ImpliedVolatility(q Quote) (IVResult, error) {
	return DefaultBisectionSolver().Solve(q)
}

func (b BisectionSolver) Solve(q Quote) (IVResult, error) {
	if err := q.validateForInversion(); err != nil {
		return IVResult{}, err
	}

	if !(b.Lower > 0) || !(b.Upper > b.Lower) {
		return IVResult{}, fmt.Errorf("BisectionSolver.Solve: invalid bracket [%v, %v]", b.Lower, b.Upper)
	}

	m := newKernel(q)

	var result IVResult
	var err error
	if q.Type == Call {
		result, err = b.solveCall(m, q.MarketPrice)
	} else {
		result, err = b.solvePut(m, q.MarketPrice)
	}

	if err != nil {
		return IVResult{}, err
	}

	if !isFinite(result.Volatility) {
		return IVResult{}, &NumericAnomalyError{Quantity: "implied_vol", Value: result.Volatility}
	}

	return result, nil
}

func (b BisectionSolver) maxIterations() int {
	if b.MaxIterations <= 0 {
		return 200
	}

	return b.MaxIterations
}

func (b BisectionSolver) solveCall(m kernel, target float64) (IVResult, error) {
	lower, upper := b.Lower, b.Upper
	maxIterations := b.maxIterations()

	for iteration := 1; ; iteration++ {
		mid := (lower + upper) / 2
		priceMid := m.price(mid)
		if !isFinite(priceMid) {
			return IVResult{}, &NumericAnomalyError{Quantity: "price", Value: priceMid}
		}

		priceLower := m.price(lower)
		if (priceLower-target)*(priceMid-target) > 0 {
			lower = mid
		} else {
			upper = mid
		}

		if math.Abs(priceMid-target) < b.Precision {
			return IVResult{Volatility: mid, Iterations: iteration, Converged: true}, nil
		}

		if mid > b.Upper-b.UpperMargin {
			return IVResult{Volatility: b.Lower, Iterations: iteration, Clamped: true}, nil
		}

		if iteration >= maxIterations {
			return IVResult{Volatility: mid, Iterations: iteration}, nil
		}
	}
}

func (b BisectionSolver) solvePut(m kernel, target float64) (IVResult, error) {
	lower, upper := b.Lower, b.Upper
	maxIterations := b.maxIterations()

	for iteration := 1; ; iteration++ {
		mid := (lower + upper) / 2
		priceMid := m.price(mid)
		if !isFinite(priceMid) {
			return IVResult{}, &NumericAnomalyError{Quantity: "price", Value: priceMid}
		}

		priceUpper := m.price(upper)
		if (priceUpper-target)*(priceMid-target) > 0 {
			upper = mid
		} else {
			lower = mid
		}

		if math.Abs(priceMid-target) < b.Precision {
			return IVResult{Volatility: mid, Iterations: iteration, Converged: true}, nil
		}

		if iteration > b.PutMaxIterations || iteration >= maxIterations {
			return IVResult{Volatility: mid, Iterations: iteration}, nil
		}
	}
}
