// Package tree implements the arena that stores one regression tree.
//
// Nodes live in a flat slice and refer to each other by index. Ids freed by
// pruning are kept on a LIFO stack and handed out again by Alloc, so a tree that
// grows and collapses subtrees does not grow its storage without bound.
package tree

const (
	// NoParent is the parent index of the root.
	NoParent = -1
	// Detached is the parent index of a freed node.
	Detached = -2
	// NoChild marks an absent child; a node is a leaf iff both children are NoChild.
	NoChild = -1
)

// ParentLink points from a node to its parent and records which side it hangs on.
type ParentLink struct {
	Index  int
	IsLeft bool
}

// NodeStat holds the statistics the pruner needs.
type NodeStat struct {
	LossChg      float64 // gain of the committed split
	BaseWeight   float64 // unshrunk weight of the node's rows
	LeafChildCnt int     // children already finalized as leaves
}

// Node is one arena slot.
type Node struct {
	LeafValue  float64
	Parent     ParentLink
	Left       int
	Right      int
	SplitIndex int
	SplitCond  float64
	Stat       NodeStat
}

func newNode() Node {
	return Node{
		Parent: ParentLink{Index: NoParent},
		Left:   NoChild,
		Right:  NoChild,
	}
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return n.Left == NoChild && n.Right == NoChild
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool {
	return n.Parent.Index == NoParent
}

// IsLeftChild reports whether the node is its parent's left child.
func (n *Node) IsLeftChild() bool {
	return n.Parent.Index >= 0 && n.Parent.IsLeft
}

// IsDeleted reports whether the node sits on the free stack.
func (n *Node) IsDeleted() bool {
	return n.Parent.Index == Detached
}

// SetSplit records the split feature and threshold. Rows with
// x[index] > cond go to the left child.
func (n *Node) SetSplit(index int, cond float64) {
	n.SplitIndex = index
	n.SplitCond = cond
}

// SetLeaf turns the node into a leaf carrying value.
func (n *Node) SetLeaf(value float64) {
	n.LeafValue = value
	n.Left = NoChild
	n.Right = NoChild
	n.SplitIndex = 0
	n.SplitCond = 0
}
