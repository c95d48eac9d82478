package pricing

import "fmt"

var DomainErr = fmt.Errorf("input outside the black-scholes domain")
var NumericAnomalyErr = fmt.Errorf("non-finite result from finite inputs")
var NonConvergenceErr = fmt.Errorf("implied volatility did not converge")

// DomainError reports the input field that violated the model's domain.
type DomainError struct {
	Field      string
	Value      float64
	Constraint string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%v: %s=%v violates %s", DomainErr, e.Field, e.Value, e.Constraint)
}

func (e *DomainError) Is(target error) bool {
	return target == DomainErr
}

// NumericAnomalyError is a bug signal: inputs passed validation yet an output
// came back NaN or Inf.
type NumericAnomalyError struct {
	Quantity string
	Value    float64
}

func (e *NumericAnomalyError) Error() string {
	return fmt.Sprintf("%v: %s=%v", NumericAnomalyErr, e.Quantity, e.Value)
}

func (e *NumericAnomalyError) Is(target error) bool {
	return target == NumericAnomalyErr
}
