// Package split implements exact greedy split enumeration over one feature column.
//
// A column is sorted by value and scanned once from the lowest value upwards.
// Between two distinct neighbouring values the scan evaluates the boundary at
// their midpoint. Rows that do not carry the feature read as 0 at prediction time,
// so they join the low side whenever the boundary lies at or above 0. When every
// stored value is positive, the boundary between 0 and the smallest value is
// evaluated as well.
//
// Values must be finite; the booster rejects NaN and infinities before a column
// is sorted.
package split

import (
	"sort"

	"github.com/YuminosukeSato/cartboost/columnar"
	"github.com/YuminosukeSato/cartboost/regularizer"
)

// NoFeature is the Feature of a candidate that does not split.
const NoFeature = -1

// Candidate is the best boundary found so far. Rows with x[Feature] > Cond form
// the high side, which becomes the left child.
type Candidate struct {
	LossChg float64
	Feature int
	Cond    float64
}

// None returns the empty candidate every search starts from.
func None() Candidate {
	return Candidate{Feature: NoFeature}
}

// Valid reports whether c names a split.
func (c Candidate) Valid() bool {
	return c.Feature != NoFeature
}

// Params controls which boundaries are admissible.
type Params struct {
	MinChildWeight float64
	Epsilon        float64
	Regularizer    regularizer.Regularizer
}

// Totals are the gradient statistics of all rows of the node being split.
type Totals struct {
	SumGrad float64
	SumHess float64
	Rows    int
}

// SortEntries orders a column by ascending value, ties broken by row id.
func SortEntries(entries []columnar.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value < entries[j].Value
		}
		return entries[i].Row < entries[j].Row
	})
}

// Enumerate returns the best boundary of one sorted column. The result keeps
// LossChg 0 and NoFeature when no boundary has a strictly positive gain.
func Enumerate(feature int, entries []columnar.Entry, grad, hess []float32, totals Totals, p Params) Candidate {
	best := None()
	if len(entries) == 0 {
		return best
	}

	var featG, featH float64
	for _, e := range entries {
		featG += float64(grad[e.Row])
		featH += float64(hess[e.Row])
	}
	missG := totals.SumGrad - featG
	missH := totals.SumHess - featH
	missN := totals.Rows - len(entries)

	rootCost := p.Regularizer.Cost(totals.SumGrad, totals.SumHess)

	// score evaluates one boundary given the sums of its low side. It returns
	// false once the high side is too light for every later boundary.
	score := func(lg, lh float64, ln int, cond float64) bool {
		if lh < p.MinChildWeight {
			return true
		}
		hh := totals.SumHess - lh
		if hh < p.MinChildWeight {
			return false
		}
		if ln <= 0 || totals.Rows-ln <= 0 {
			return true
		}
		gain := p.Regularizer.Cost(lg, lh) + p.Regularizer.Cost(totals.SumGrad-lg, hh) - rootCost
		if gain > best.LossChg {
			best = Candidate{LossChg: gain, Feature: feature, Cond: cond}
		}
		return true
	}

	// Missing rows read as 0, below a column of positive values. The boundary
	// between 0 and the smallest value separates them from every stored row.
	// A column of negative values needs no counterpart: its last boundary
	// already sends the missing rows alone to the high side.
	if v0 := float64(entries[0].Value); missN > 0 && 2*p.Epsilon < v0 {
		if !score(missG, missH, missN, 0.5*v0) {
			return best
		}
	}

	var lowG, lowH float64
	last := len(entries) - 1
	for i, e := range entries {
		lowG += float64(grad[e.Row])
		lowH += float64(hess[e.Row])

		v := float64(e.Value)
		var cond float64
		if i == last {
			cond = v + p.Epsilon
		} else {
			next := float64(entries[i+1].Value)
			if !(v+2*p.Epsilon < next) {
				continue
			}
			cond = 0.5 * (v + next)
		}

		lg, lh, ln := lowG, lowH, i+1
		if cond >= 0 {
			lg += missG
			lh += missH
			ln += missN
		}
		if !score(lg, lh, ln, cond) {
			break
		}
	}
	return best
}

// Combine reduces two candidates, keeping a unless b is strictly better.
func Combine(a, b Candidate) Candidate {
	if b.LossChg > a.LossChg {
		return b
	}
	return a
}

// GoesLeft reports the side a value falls on for the split c.
func (c Candidate) GoesLeft(value float32) bool {
	return float64(value) > c.Cond
}
