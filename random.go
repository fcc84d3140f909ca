package synthtext

import (
	"fmt"
	"math/rand/v2"
)

// distKind tags the distribution family of a RandomVar.
type distKind uint8

const (
	distUniform distKind = iota
	distGaussian
)

// RandomVar is a scalar random variable over a closed interval. It is an
// immutable value type: copy it freely, sample it with an explicit
// generator. Two families are supported, uniform and truncated gaussian.
type RandomVar struct {
	kind distKind
	min  float64
	max  float64
}

// Uniform returns a variable drawing uniformly from [min, max].
func Uniform(min, max float64) RandomVar {
	if min > max {
		min, max = max, min
	}
	return RandomVar{kind: distUniform, min: min, max: max}
}

// Gaussian returns a variable drawing from a normal distribution with
// mean (min+max)/2 and standard deviation (max-min)/6, truncated to
// [min, max] by clamping. The six-sigma spread keeps ~99.7% of raw draws
// inside the interval, so clamping rarely distorts the shape.
func Gaussian(min, max float64) RandomVar {
	if min > max {
		min, max = max, min
	}
	return RandomVar{kind: distGaussian, min: min, max: max}
}

// Min returns the lower bound of the variable's support.
func (v RandomVar) Min() float64 { return v.min }

// Max returns the upper bound of the variable's support.
func (v RandomVar) Max() float64 { return v.max }

// Sample draws one value using rng. The result always lies in
// [Min, Max].
func (v RandomVar) Sample(rng *rand.Rand) float64 {
	switch v.kind {
	case distGaussian:
		mean := (v.min + v.max) / 2
		sigma := (v.max - v.min) / 6
		x := rng.NormFloat64()*sigma + mean
		return min(max(x, v.min), v.max)
	default:
		return v.min + rng.Float64()*(v.max-v.min)
	}
}

// String describes the variable in the compact form used by config files.
func (v RandomVar) String() string {
	tag := "u"
	if v.kind == distGaussian {
		tag = "g"
	}
	return fmt.Sprintf("[%g, %g, %q]", v.min, v.max, tag)
}

// randRange returns a uniform integer in [lo, hi], swapping the bounds
// if they arrive inverted.
func randRange(rng *rand.Rand, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + rng.IntN(hi-lo+1)
}
