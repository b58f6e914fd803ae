package tree

import (
	"fmt"
)

// Tree is an arena of nodes. Node 0 is the root and is never freed.
//
// Pointers returned by Get are invalidated by the next Alloc or AddChildren.
type Tree struct {
	nodes []Node
	free  []int
}

// New returns a tree holding a single root leaf.
func New() *Tree {
	t := &Tree{}
	t.Alloc()
	return t
}

// Alloc returns a fresh node id. The most recently freed id is reused first;
// a reused slot is fully reset, statistics included.
func (t *Tree) Alloc() int {
	if n := len(t.free); n > 0 {
		id := t.free[n-1]
		t.free = t.free[:n-1]
		t.nodes[id] = newNode()
		return id
	}
	t.nodes = append(t.nodes, newNode())
	return len(t.nodes) - 1
}

// Get returns the node with the given id.
func (t *Tree) Get(id int) *Node {
	if id < 0 || id >= len(t.nodes) {
		panic(fmt.Sprintf("tree: node id %d out of range [0, %d)", id, len(t.nodes)))
	}
	return &t.nodes[id]
}

// AddChildren allocates a left and then a right child under id and links them.
func (t *Tree) AddChildren(id int) (left, right int) {
	left = t.Alloc()
	right = t.Alloc()

	parent := t.Get(id)
	parent.Left = left
	parent.Right = right
	t.nodes[left].Parent = ParentLink{Index: id, IsLeft: true}
	t.nodes[right].Parent = ParentLink{Index: id, IsLeft: false}
	return left, right
}

// DeleteNode detaches id and pushes it on the free stack. The root is never freed.
func (t *Tree) DeleteNode(id int) {
	if id == 0 {
		return
	}
	n := t.Get(id)
	if n.IsDeleted() {
		return
	}
	n.Parent = ParentLink{Index: Detached}
	t.free = append(t.free, id)
}

// ChangeToLeaf frees every descendant of id and turns id into a leaf with value.
// Descendants are freed in pre-order, left subtree before right.
func (t *Tree) ChangeToLeaf(id int, value float64) {
	n := t.Get(id)
	if !n.IsLeaf() {
		stack := []int{n.Right, n.Left}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			c := t.Get(cur)
			if !c.IsLeaf() {
				stack = append(stack, c.Right, c.Left)
			}
			t.DeleteNode(cur)
		}
	}
	t.Get(id).SetLeaf(value)
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id int) int {
	depth := 0
	for n := t.Get(id); !n.IsRoot(); n = t.Get(n.Parent.Index) {
		if n.IsDeleted() {
			panic(fmt.Sprintf("tree: depth of detached node %d", id))
		}
		depth++
	}
	return depth
}

// Size returns the number of slots in the arena, free ones included.
func (t *Tree) Size() int {
	return len(t.nodes)
}

// DeletedCount returns the number of slots on the free stack.
func (t *Tree) DeletedCount() int {
	return len(t.free)
}

// Walk visits every node reachable from the root in pre-order, passing the
// node id and its depth. Returning false stops the walk.
func (t *Tree) Walk(fn func(id, depth int) bool) {
	type item struct{ id, depth int }
	stack := []item{{0, 0}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(it.id, it.depth) {
			return
		}
		n := &t.nodes[it.id]
		if !n.IsLeaf() {
			stack = append(stack, item{n.Right, it.depth + 1}, item{n.Left, it.depth + 1})
		}
	}
}

// NumLeaves returns the number of reachable leaves.
func (t *Tree) NumLeaves() int {
	leaves := 0
	t.Walk(func(id, _ int) bool {
		if t.nodes[id].IsLeaf() {
			leaves++
		}
		return true
	})
	return leaves
}

// MaxDepth returns the depth of the deepest reachable leaf.
func (t *Tree) MaxDepth() int {
	maxDepth := 0
	t.Walk(func(id, depth int) bool {
		if t.nodes[id].IsLeaf() && depth > maxDepth {
			maxDepth = depth
		}
		return true
	})
	return maxDepth
}
