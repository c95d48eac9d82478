package pricing

import "gonum.org/v1/gonum/stat/distuv"

var unitNormal = distuv.UnitNormal

// normCdf is the standard normal cumulative distribution function.
func normCdf(x float64) float64 {
	return unitNormal.CDF(x)
}

// normPdf is the standard normal probability density function.
func normPdf(x float64) float64 {
	return unitNormal.Prob(x)
}
