// Package position implements fractional sibling ordering: a new item gets
// the midpoint of its neighbours so nothing else is renumbered, until the
// gap becomes too small to split, at which point the caller renumbers the
// siblings with Renumber and retries.
package position

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/nodestore/internal/common"
)

// Step is the gap between consecutive positions after renumbering and
// between the last item and an appended one.
const Step = 1.0

// MinGap is the relative gap under which two neighbours are considered
// indistinguishable for further splitting.
const MinGap = 1e-9

// Between returns the midpoint of prev and next. It fails with
// common.ErrPositionExhausted when prev >= next or when the midpoint would
// land within MinGap of either neighbour.
func Between(prev, next float64) (float64, error) {
	if !(prev < next) {
		return 0, fmt.Errorf("%w: %v is not before %v", common.ErrPositionExhausted, prev, next)
	}
	scale := math.Max(1, math.Max(math.Abs(prev), math.Abs(next)))
	if next-prev <= 2*MinGap*scale {
		return 0, fmt.Errorf("%w: gap between %v and %v", common.ErrPositionExhausted, prev, next)
	}
	mid := prev + (next-prev)/2
	if !(prev < mid && mid < next) {
		return 0, fmt.Errorf("%w: midpoint of %v and %v", common.ErrPositionExhausted, prev, next)
	}
	return mid, nil
}

// Insert computes a position between two optional neighbours: nil prev means
// "first", nil next means "last".
func Insert(prev, next *float64) (float64, error) {
	switch {
	case prev == nil && next == nil:
		return Step, nil
	case prev == nil:
		return Between(*next-Step, *next)
	case next == nil:
		return *prev + Step, nil
	default:
		return Between(*prev, *next)
	}
}

// Append returns the position following last, or Step when there is none.
func Append(last *float64) float64 {
	if last == nil {
		return Step
	}
	return *last + Step
}

// Renumber returns n evenly spaced positions Step, 2*Step, … n*Step.
func Renumber(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = Step * float64(i+1)
	}
	return out
}
