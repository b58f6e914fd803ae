package tree

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTreeHasRootLeaf(t *testing.T) {
	tr := New()
	require.Equal(t, 1, tr.Size())
	root := tr.Get(0)
	assert.True(t, root.IsRoot())
	assert.True(t, root.IsLeaf())
	assert.False(t, root.IsLeftChild())
	assert.Equal(t, 0, tr.Depth(0))
}

func TestAddChildrenLinksBothSides(t *testing.T) {
	tr := New()
	left, right := tr.AddChildren(0)
	assert.Equal(t, 1, left)
	assert.Equal(t, 2, right)

	root := tr.Get(0)
	assert.False(t, root.IsLeaf())
	assert.Equal(t, left, root.Left)
	assert.Equal(t, right, root.Right)

	assert.True(t, tr.Get(left).IsLeftChild())
	assert.False(t, tr.Get(right).IsLeftChild())
	assert.Equal(t, ParentLink{Index: 0, IsLeft: true}, tr.Get(left).Parent)
	assert.Equal(t, ParentLink{Index: 0, IsLeft: false}, tr.Get(right).Parent)
	assert.Equal(t, 1, tr.Depth(right))
}

func TestChangeToLeafFreesSubtreeLeftFirst(t *testing.T) {
	tr := New()
	l, r := tr.AddChildren(0) // 1, 2
	ll, lr := tr.AddChildren(l)
	require.Equal(t, 3, ll)
	require.Equal(t, 4, lr)
	assert.Equal(t, 2, tr.Depth(lr))

	tr.ChangeToLeaf(0, 1.5)

	root := tr.Get(0)
	assert.True(t, root.IsLeaf())
	assert.Equal(t, 1.5, root.LeafValue)
	assert.Equal(t, 4, tr.DeletedCount())
	assert.Equal(t, 5, tr.Size())
	for _, id := range []int{l, r, ll, lr} {
		assert.True(t, tr.Get(id).IsDeleted(), "node %d", id)
	}

	// Pre-order, left before right: freed 1, 3, 4, 2; reuse pops 2 first.
	assert.Equal(t, r, tr.Alloc())
	assert.Equal(t, lr, tr.Alloc())
	assert.Equal(t, ll, tr.Alloc())
	assert.Equal(t, l, tr.Alloc())
	assert.Equal(t, 5, tr.Alloc())
	assert.Equal(t, 0, tr.DeletedCount())
}

func TestAllocResetsReusedSlot(t *testing.T) {
	tr := New()
	l, r := tr.AddChildren(0)
	n := tr.Get(l)
	n.Stat = NodeStat{LossChg: 3, BaseWeight: -2, LeafChildCnt: 1}
	n.SetSplit(4, 0.5)
	n.LeafValue = 9
	tr.ChangeToLeaf(0, 0)

	first, second := tr.AddChildren(0)
	assert.Equal(t, r, first)
	assert.Equal(t, l, second)

	reused := tr.Get(l)
	assert.Equal(t, NodeStat{}, reused.Stat)
	assert.Equal(t, 0.0, reused.LeafValue)
	assert.Equal(t, 0, reused.SplitIndex)
	assert.True(t, reused.IsLeaf())
	assert.Equal(t, ParentLink{Index: 0, IsLeft: false}, reused.Parent)
}

func TestStaleLeafChildCountAcrossLevels(t *testing.T) {
	tr := New()
	a, _ := tr.AddChildren(0)
	c, _ := tr.AddChildren(a)
	tr.Get(a).Stat.LeafChildCnt = 2
	tr.Get(c).Stat.LeafChildCnt = 1

	tr.ChangeToLeaf(0, 0)
	for tr.DeletedCount() > 0 {
		id := tr.Alloc()
		assert.Equal(t, 0, tr.Get(id).Stat.LeafChildCnt, "node %d kept a stale count", id)
	}
}

func TestDeleteNodeIgnoresRootAndDoubleFree(t *testing.T) {
	tr := New()
	l, _ := tr.AddChildren(0)
	tr.DeleteNode(0)
	assert.Equal(t, 0, tr.DeletedCount())

	tr.DeleteNode(l)
	tr.DeleteNode(l)
	assert.Equal(t, 1, tr.DeletedCount())
}

func TestGetOutOfRangePanics(t *testing.T) {
	tr := New()
	assert.Panics(t, func() { tr.Get(7) })
	assert.Panics(t, func() { tr.Get(-1) })
}

func TestWalkStatistics(t *testing.T) {
	tr := New()
	l, r := tr.AddChildren(0)
	tr.AddChildren(r)
	tr.Get(l).SetLeaf(1)

	assert.Equal(t, 3, tr.NumLeaves())
	assert.Equal(t, 2, tr.MaxDepth())

	var order []int
	tr.Walk(func(id, _ int) bool {
		order = append(order, id)
		return true
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestPredictDirection(t *testing.T) {
	tr := New()
	l, r := tr.AddChildren(0)
	tr.Get(0).SetSplit(1, 0.5)
	tr.Get(l).SetLeaf(10)
	tr.Get(r).SetLeaf(-10)

	assert.Equal(t, 10.0, tr.Predict(DenseVector{0, 1}))
	assert.Equal(t, -10.0, tr.Predict(DenseVector{0, 0.5}))
	// Absent feature reads as 0.
	assert.Equal(t, -10.0, tr.Predict(DenseVector{3}))
	assert.Equal(t, r, tr.LeafIndex(DenseVector{}))
}

func TestGobRoundTrip(t *testing.T) {
	tr := New()
	l, r := tr.AddChildren(0)
	tr.Get(0).SetSplit(0, 2.25)
	tr.Get(l).SetLeaf(0.3)
	tr.Get(r).SetLeaf(-0.7)
	ll, _ := tr.AddChildren(l)
	tr.ChangeToLeaf(l, 0.3)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(tr))

	var got Tree
	require.NoError(t, gob.NewDecoder(&buf).Decode(&got))
	assert.Equal(t, tr.Size(), got.Size())
	assert.Equal(t, tr.DeletedCount(), got.DeletedCount())
	assert.Equal(t, 0.3, got.Predict(DenseVector{5}))
	assert.Equal(t, -0.7, got.Predict(DenseVector{1}))
	assert.True(t, got.Get(ll).IsDeleted())
}
