package common

import "errors"

var (
	ErrorInvalidValue = errors.New("invalid value")

	// ErrorDimensionMismatch is returned when a point, a sample, a bandwidth
	// or the weighting parameters do not have the same number of dimensions.
	ErrorDimensionMismatch = errors.New("dimension mismatch")

	// ErrorInvalidBandwidth is returned for a bandwidth component that is not
	// strictly positive and finite.
	ErrorInvalidBandwidth = errors.New("invalid bandwidth")

	// ErrorNumericDegeneracy is returned when a density can not be represented
	// as a finite float64. Computing in log space delays this, but very large
	// exponents or samples far in the tail of the weighting function still
	// overflow 1/w, or underflow every weight.
	ErrorNumericDegeneracy = errors.New("numeric degeneracy")
)
