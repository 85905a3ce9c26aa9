// Package growth implements the four growth laws of §3/§4.E: a tagged
// variant (Linear/Polynomial/Logistic/Increment) over the parameters each
// carries inline, dispatched by Apply.
package growth

import "math"

// Kind identifies a growth law's variant.
type Kind int

const (
	Linear Kind = iota
	Polynomial
	Logistic
	Increment
)

// Spec is a GrowthSpec (§3): a tagged variant carrying exactly the
// parameters its Kind needs.
type Spec struct {
	Kind Kind

	// Linear
	Rate float64

	// Polynomial: v(t) = sum(coefficients[i] * t^i)
	Coefficients []float64

	// Logistic
	K float64
	R float64

	// Increment
	Step float64
}

// Apply computes v(t) for the given start value and period index t,
// per the closed forms in §3. start is the VariableSpec.start value,
// used as N0 for Logistic (unless exactly zero, see NInitial).
func Apply(spec Spec, start float64, t int) float64 {
	switch spec.Kind {
	case Linear:
		return start * math.Pow(1+spec.Rate, float64(t))
	case Polynomial:
		return evalPolynomial(spec.Coefficients, t)
	case Logistic:
		n0 := NInitial(spec.K, start)
		if n0 == 0 {
			return 0
		}
		return spec.K / (1 + ((spec.K-n0)/n0)*math.Exp(-spec.R*float64(t)))
	case Increment:
		return start + spec.Step*float64(t)
	default:
		return start
	}
}

func evalPolynomial(coeffs []float64, t int) float64 {
	sum := 0.0
	tf := float64(t)
	power := 1.0
	for _, c := range coeffs {
		sum += c * power
		power *= tf
	}
	return sum
}

// NInitial implements §3's Logistic N0 rule: N0 = start, or
// max(start, K*0.001) when start is zero. stored_geocodes-style
// variables (§4.E "Special variables") rely on exactly this rule to
// avoid a degenerate start at zero.
func NInitial(k, start float64) float64 {
	if start != 0 {
		return start
	}
	floor := k * 0.001
	if floor > start {
		return floor
	}
	return start
}

// Clamp applies the optional max/min bounds from a VariableSpec, pulling
// a value above max down to max first, then a value still below min up
// to min, per §4.E step 2 ("clamp up... clamp down").
func Clamp(v float64, hasMin bool, min float64, hasMax bool, max float64) float64 {
	if hasMax && v > max {
		v = max
	}
	if hasMin && v < min {
		v = min
	}
	return v
}
