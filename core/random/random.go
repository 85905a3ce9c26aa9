// Package random implements §4.A's Random Source: a seeded, reproducible
// sampler from a bounded skewed distribution.
package random

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	ferrors "finsim/internal/errors"
)

// Source draws skewed samples from a fixed seed, reproducibly.
type Source struct {
	normal distuv.Normal
}

// New creates a Source seeded with seed. The seed is fixed at engine
// construction (§4.A) so that simulation reports are reproducible.
func New(seed int64) *Source {
	return &Source{
		normal: distuv.Normal{Mu: 0, Sigma: 1, Src: rand.New(rand.NewSource(uint64(seed)))},
	}
}

// Skewed draws a Value in [min, max] whose expected value approximates
// mean. It validates the §3 invariant-3 argument constraints before
// sampling.
func (s *Source) Skewed(min, max, mean float64) (float64, error) {
	if !(min < max) {
		return 0, ferrors.RandomArgumentError("$random requires min < max")
	}
	if !(min <= mean && mean <= max) {
		return 0, ferrors.RandomArgumentError("$random requires min <= mean <= max")
	}

	width := max - min
	mid := min + width/2

	// Skew parameter alpha: 0 at the midpoint, positive (right-skew) when
	// the mean sits below the midpoint, negative (left-skew) when above.
	// Scaled so that alpha stays in a numerically tame range regardless
	// of how close mean sits to an edge.
	pos := (mean - mid) / (width / 2) // in [-1, 1]
	alpha := -pos * 6.0

	z := s.normal.Rand()
	u := skewNormalCDF(z, alpha)
	v := min + u*width

	if v < min {
		v = min
	}
	if v > max {
		v = max
	}
	return v, nil
}

// skewNormalCDF approximates the CDF of Azzalini's skew-normal
// distribution at z with shape alpha, which is exactly what §4.A asks
// for: "transform z through a skew-normal CDF-equivalent to yield
// u in [0,1]". It uses the identity F(z) = Phi(z) - 2*T(z, alpha),
// with Owen's T function approximated numerically by owenT.
func skewNormalCDF(z, alpha float64) float64 {
	phi := stdNormalCDF(z)
	t := owenT(z, alpha)
	u := phi - 2*t
	if u < 0 {
		u = 0
	}
	if u > 1 {
		u = 1
	}
	return u
}

func stdNormalCDF(x float64) float64 {
	return 0.5 * math.Erfc(-x/math.Sqrt2)
}

// owenT computes Owen's T function T(h, a) via numerical integration,
// sufficient precision for a sampler whose contract (§4.A) is an
// empirical-mean tolerance, not a closed-form guarantee.
func owenT(h, a float64) float64 {
	if a == 0 || h == math.Inf(1) || h == math.Inf(-1) {
		return 0
	}
	const n = 200
	step := a / n
	sum := 0.0
	for i := 0; i < n; i++ {
		x := (float64(i) + 0.5) * step
		integrand := math.Exp(-0.5*h*h*(1+x*x)) / (1 + x*x)
		sum += integrand
	}
	return sum * step / (2 * math.Pi)
}
