package util

import (
	"golang.org/x/exp/constraints"
)

func Min[A constraints.Ordered](a A, b A) A {
	if a < b {
		return a
	}
	return b
}

func Max[A constraints.Ordered](a A, b A) A {
	if a > b {
		return a
	}
	return b
}

// Clamp pins v into [lo, hi].
func Clamp[A constraints.Ordered](v A, lo A, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Sum[A constraints.Float | constraints.Integer](nums []A) A {
	var total A
	for _, v := range nums {
		total += v
	}
	return total
}
