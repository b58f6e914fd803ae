package booster

import (
	"github.com/YuminosukeSato/cartboost/pkg/errors"
	"github.com/YuminosukeSato/cartboost/split"
)

// partition reorders ids so that the rows going left (x > cond) come first,
// keeping the relative order within each side, and returns the number of left rows.
//
// Only rows stored in the split column are known explicitly. Rows without the
// feature read as 0 and follow 0 > cond, so the column rows that fall on the other
// side are marked and everything unmarked joins the side of the missing rows.
func (b *CARTBooster) partition(ids []int32, best split.Candidate) (int, error) {
	col := b.image.Feature(best.Feature)
	missingLeft := best.GoesLeft(0)

	marked := 0
	for _, e := range col {
		if best.GoesLeft(e.Value) != missingLeft {
			b.mark[e.Row] = true
			marked++
		}
	}
	defer func() {
		for _, e := range col {
			b.mark[e.Row] = false
		}
	}()

	scratch := b.scratch[:len(ids)]
	nLeft, seen := 0, 0
	for _, r := range ids {
		if b.mark[r] {
			seen++
		}
		if b.mark[r] != missingLeft {
			scratch[nLeft] = r
			nLeft++
		}
	}
	if seen != marked {
		return 0, errors.NewDataInconsistencyError("CARTBooster.partition", -1, best.Feature,
			"split column does not match the rows of the task")
	}
	nRight := nLeft
	for _, r := range ids {
		if b.mark[r] == missingLeft {
			scratch[nRight] = r
			nRight++
		}
	}

	copy(ids, scratch)
	return nLeft, nil
}
