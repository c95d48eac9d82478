package pricing

import "fmt"

// Metrics is the full analytics record for one contract observation: greeks
// at the supplied volatility plus the volatility implied by the market price.
type Metrics struct {
	Greeks
	ImpliedVol   float64
	IVIterations int
	IVConverged  bool
	IVClamped    bool
}

func ComputeMetrics(q Quote, solver VolatilitySolver) (Metrics, error) {
	greeks, err := ComputeGreeks(q)
	if err != nil {
		return Metrics{}, err
	}

	if solver == nil {
		return Metrics{}, fmt.Errorf("ComputeMetrics: nil solver")
	}

	iv, err := solver.Solve(q)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		Greeks:       greeks,
		ImpliedVol:   iv.Volatility,
		IVIterations: iv.Iterations,
		IVConverged:  iv.Converged,
		IVClamped:    iv.Clamped,
	}, nil
}
