// Package columnar builds the per-node column image used by split search.
//
// An Image is filled in three phases. AddBudget counts the entries of each
// feature, BuildStorage turns the counts into fixed offsets, and AddElement
// writes each counted entry exactly once. The offsets never move after
// BuildStorage; a separate cursor tracks how far each feature has been filled.
package columnar

import (
	"sort"

	"github.com/YuminosukeSato/cartboost/pkg/errors"
)

// Entry is one (row, value) pair of a feature column.
type Entry struct {
	Row   int32
	Value float32
}

type phase int

const (
	phaseBudget phase = iota
	phaseFill
)

// Image is a columnar snapshot of the rows of one node.
type Image struct {
	numFeature int
	counts     []int
	offsets    []int // len numFeature+1, fixed after BuildStorage
	cursor     []int
	entries    []Entry
	active     []int
	phase      phase
}

// NewImage returns an empty image for numFeature feature slots.
func NewImage(numFeature int) *Image {
	if numFeature < 0 {
		numFeature = 0
	}
	return &Image{
		numFeature: numFeature,
		counts:     make([]int, numFeature),
		offsets:    make([]int, numFeature+1),
		cursor:     make([]int, numFeature),
	}
}

// NumFeature returns the number of feature slots.
func (im *Image) NumFeature() int {
	return im.numFeature
}

func (im *Image) checkFeature(op string, row, feature int) error {
	if feature < 0 || feature >= im.numFeature {
		return errors.NewDataInconsistencyError(op, row, feature, "feature index out of range")
	}
	return nil
}

// AddBudget reserves one slot for feature.
func (im *Image) AddBudget(feature int) error {
	if im.phase != phaseBudget {
		return errors.NewDataInconsistencyError("columnar.AddBudget", -1, feature, "budget added after BuildStorage")
	}
	if err := im.checkFeature("columnar.AddBudget", -1, feature); err != nil {
		return err
	}
	if im.counts[feature] == 0 {
		im.active = append(im.active, feature)
	}
	im.counts[feature]++
	return nil
}

// BuildStorage fixes the offsets from the budgets. It may be called once per fill.
func (im *Image) BuildStorage() error {
	if im.phase != phaseBudget {
		return errors.NewDataInconsistencyError("columnar.BuildStorage", -1, -1, "storage already built")
	}
	total := 0
	for f := 0; f < im.numFeature; f++ {
		im.offsets[f] = total
		im.cursor[f] = total
		total += im.counts[f]
	}
	im.offsets[im.numFeature] = total
	if cap(im.entries) < total {
		im.entries = make([]Entry, total)
	} else {
		im.entries = im.entries[:total]
	}
	sort.Ints(im.active)
	im.phase = phaseFill
	return nil
}

// AddElement writes the next entry of feature. It never writes outside the
// range reserved for feature.
func (im *Image) AddElement(row int32, feature int, value float32) error {
	const op = "columnar.AddElement"
	if im.phase != phaseFill {
		return errors.NewDataInconsistencyError(op, int(row), feature, "element added before BuildStorage")
	}
	if err := im.checkFeature(op, int(row), feature); err != nil {
		return err
	}
	pos := im.cursor[feature]
	if pos >= im.offsets[feature+1] {
		if im.counts[feature] == 0 {
			return errors.NewDataInconsistencyError(op, int(row), feature, "feature has no budget")
		}
		return errors.NewDataInconsistencyError(op, int(row), feature, "feature filled beyond its budget")
	}
	im.entries[pos] = Entry{Row: row, Value: value}
	im.cursor[feature] = pos + 1
	return nil
}

// Complete reports an error unless every budgeted slot has been filled.
func (im *Image) Complete() error {
	if im.phase != phaseFill {
		return errors.NewDataInconsistencyError("columnar.Complete", -1, -1, "storage not built")
	}
	for _, f := range im.active {
		if im.cursor[f] != im.offsets[f+1] {
			return errors.NewDataInconsistencyError("columnar.Complete", -1, f, "feature not completely filled")
		}
	}
	return nil
}

// Feature returns the entries of feature f. The slice aliases the image and is
// valid until the next Reset.
func (im *Image) Feature(f int) []Entry {
	if f < 0 || f >= im.numFeature || im.phase != phaseFill {
		return nil
	}
	return im.entries[im.offsets[f]:im.offsets[f+1]:im.offsets[f+1]]
}

// ActiveFeatures returns the features with at least one entry, ascending.
func (im *Image) ActiveFeatures() []int {
	return im.active
}

// NumEntries returns the total number of budgeted entries.
func (im *Image) NumEntries() int {
	if im.phase != phaseFill {
		return 0
	}
	return im.offsets[im.numFeature]
}

// Reset prepares the image for the next node. Only the features touched by the
// previous fill are cleared.
func (im *Image) Reset() {
	for _, f := range im.active {
		im.counts[f] = 0
		im.cursor[f] = 0
	}
	im.active = im.active[:0]
	im.entries = im.entries[:0]
	im.phase = phaseBudget
}
