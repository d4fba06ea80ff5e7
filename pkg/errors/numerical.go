package errors

import (
	"math"
)

// CheckNumericalStability checks if values contain NaN or Inf and returns an
// error if numerical instability is detected.
func CheckNumericalStability(operation string, values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return NewNumericalInstabilityError(operation, values)
		}
	}
	return nil
}

// IsInvalid reports whether a scalar is NaN or Inf. The tuning loop uses
// this to classify an objective evaluation as rejected rather than fatal.
func IsInvalid(value float64) bool {
	return math.IsNaN(value) || math.IsInf(value, 0)
}
