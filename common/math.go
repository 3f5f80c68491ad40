package common

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Unlerp returns where v sits between a and b; a == b yields 0.
func Unlerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return (v - a) / (b - a)
}

// Clamp limits v to [lo, hi]; the bounds may be given in either order.
func Clamp(lo, hi, v float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
