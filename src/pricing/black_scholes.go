package pricing

import "math"

// Greeks are reported in exchange units: vega and rho per 1% move, theta per
// calendar day.
type Greeks struct {
	FairValue float64
	Delta     float64
	Gamma     float64
	Vega      float64
	Theta     float64
	Rho       float64
}

// kernel caches everything in the model that does not depend on sigma, so the
// IV solvers can reprice a contract without redoing the setup.
type kernel struct {
	s, k, r, q, t float64
	sqrtT         float64
	logMoneyness  float64
	discount      float64
	carry         float64
	payoff        payoff
}

func newKernel(q Quote) kernel {
	return kernel{
		s:            q.Underlying,
		k:            q.Strike,
		r:            q.Rate,
		q:            q.Dividend,
		t:            q.Expiry,
		sqrtT:        math.Sqrt(q.Expiry),
		logMoneyness: math.Log(q.Underlying / q.Strike),
		discount:     math.Exp(-q.Rate * q.Expiry),
		carry:        math.Exp(-q.Dividend * q.Expiry),
		payoff:       q.Type.payoff(),
	}
}

type evaluation struct {
	kernel
	sigma float64
	d1    float64
	d2    float64
}

func (m kernel) at(sigma float64) evaluation {
	sigmaSqrtT := sigma * m.sqrtT
	d1 := (m.logMoneyness + (m.r-m.q+sigma*sigma/2)*m.t) / sigmaSqrtT

	return evaluation{
		kernel: m,
		sigma:  sigma,
		d1:     d1,
		d2:     d1 - sigmaSqrtT,
	}
}

func (m kernel) price(sigma float64) float64 {
	return m.payoff.price(m.at(sigma))
}

// timeDecay is the per-year theta term common to calls and puts.
func (e evaluation) timeDecay() float64 {
	return -e.s * e.carry * normPdf(e.d1) * e.sigma / (2 * e.sqrtT)
}

// rawVega is dPrice/dSigma per unit of volatility.
func (e evaluation) rawVega() float64 {
	return e.s * e.carry * normPdf(e.d1) * e.sqrtT
}

func (e evaluation) gamma() float64 {
	return normPdf(e.d1) * e.carry / (e.s * e.sigma * e.sqrtT)
}

func D1D2(q Quote) (float64, float64, error) {
	if err := q.validateForPricing(); err != nil {
		return 0, 0, err
	}

	e := newKernel(q).at(q.Volatility)
	if !isFinite(e.d1) {
		return 0, 0, &NumericAnomalyError{Quantity: "d1", Value: e.d1}
	}

	if !isFinite(e.d2) {
		return 0, 0, &NumericAnomalyError{Quantity: "d2", Value: e.d2}
	}

	return e.d1, e.d2, nil
}

// Price is the Black-Scholes-Merton fair value of the quote.
func Price(q Quote) (float64, error) {
	if err := q.validateForPricing(); err != nil {
		return 0, err
	}

	price := newKernel(q).price(q.Volatility)
	if !isFinite(price) {
		return 0, &NumericAnomalyError{Quantity: "fair_value", Value: price}
	}

	return price, nil
}

func ComputeGreeks(q Quote) (Greeks, error) {
	if err := q.validateForPricing(); err != nil {
		return Greeks{}, err
	}

	e := newKernel(q).at(q.Volatility)
	p := e.payoff

	g := Greeks{
		FairValue: p.price(e),
		Delta:     p.delta(e),
		Gamma:     e.gamma(),
		Vega:      e.rawVega() / 100,
		Theta:     p.thetaPerYear(e) / 365,
		Rho:       p.rho(e),
	}

	if err := g.checkFinite(); err != nil {
		return Greeks{}, err
	}

	return g, nil
}

func (g Greeks) checkFinite() error {
	values := []struct {
		name  string
		value float64
	}{
		{"fair_value", g.FairValue},
		{"delta", g.Delta},
		{"gamma", g.Gamma},
		{"vega", g.Vega},
		{"theta", g.Theta},
		{"rho", g.Rho},
	}

	for _, v := range values {
		if !isFinite(v.value) {
			return &NumericAnomalyError{Quantity: v.name, Value: v.value}
		}
	}

	return nil
}
