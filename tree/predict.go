package tree

// FeatureVector is a row as seen by prediction. Absent features read as 0.
type FeatureVector interface {
	Value(feature int) float32
}

// DenseVector adapts a dense slice to FeatureVector.
type DenseVector []float32

// Value implements FeatureVector.
func (v DenseVector) Value(feature int) float32 {
	if feature < 0 || feature >= len(v) {
		return 0
	}
	return v[feature]
}

// LeafIndex returns the id of the leaf fv falls into. Rows with
// x[SplitIndex] > SplitCond descend left.
func (t *Tree) LeafIndex(fv FeatureVector) int {
	id := 0
	for {
		n := &t.nodes[id]
		if n.IsLeaf() {
			return id
		}
		if float64(fv.Value(n.SplitIndex)) > n.SplitCond {
			id = n.Left
		} else {
			id = n.Right
		}
	}
}

// Predict returns the value of the leaf fv falls into.
func (t *Tree) Predict(fv FeatureVector) float64 {
	return t.nodes[t.LeafIndex(fv)].LeafValue
}
