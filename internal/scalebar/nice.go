package scalebar

import "math"

// multipliers are the leading digits of the nice-number table. Every table entry is
// one of them scaled by a power of ten.
var multipliers = [...]float64{1, 2, 3, 5}

// eps absorbs the rounding of decimal entries such as 0.3 against an equal bound.
const eps = 1e-9

// NiceNumber returns the largest table entry not exceeding max, or with alwaysFit the
// smallest entry not below it. A non-positive or non-finite max yields 0, as does a
// max whose covering entry overflows float64.
func NiceNumber(max float64, alwaysFit bool) float64 {
	if !(max > 0) || math.IsInf(max, 0) {
		return 0
	}
	exp := int(math.Floor(math.Log10(max)))
	// Log10 can land one decade off for exact powers of ten.
	if entry(1, exp+1) <= max*(1+eps) {
		exp++
	} else if entry(1, exp) > max*(1+eps) {
		exp--
	}

	if alwaysFit {
		for _, m := range multipliers {
			if v := entry(m, exp); v >= max*(1-eps) {
				return finiteOrZero(v)
			}
		}
		return finiteOrZero(entry(1, exp+1))
	}

	best := entry(1, exp)
	for _, m := range multipliers[1:] {
		v := entry(m, exp)
		if v > max*(1+eps) {
			break
		}
		best = v
	}
	return best
}

// finiteOrZero maps entries past the float64 range to 0.
func finiteOrZero(v float64) float64 {
	if math.IsInf(v, 0) {
		return 0
	}
	return v
}

// entry computes m * 10^exp, dividing for negative exponents so that decimal entries
// come out as the closest float64 to their literal.
func entry(m float64, exp int) float64 {
	if exp < 0 {
		return m / math.Pow10(-exp)
	}
	return m * math.Pow10(exp)
}

// LeadingDigit returns the table multiplier of a nice number, or 0 when v is not one.
func LeadingDigit(v float64) float64 {
	if !(v > 0) || math.IsInf(v, 0) {
		return 0
	}
	exp := int(math.Floor(math.Log10(v)))
	for _, e := range []int{exp, exp + 1, exp - 1} {
		for _, m := range multipliers {
			if math.Abs(entry(m, e)-v) <= v*eps {
				return m
			}
		}
	}
	return 0
}
