// Package bvh implements a bounding volume hierarchy over axis aligned boxes. A Tree is built once from a flat list
// of entries, queried for the nearest entry to a point or for every entry within a radius of a point, and then
// dropped. There is no incremental update: callers whose geometry moves rebuild the tree.
package bvh

import (
	"github.com/janreitz/garden/spatialmath"
)

// Entry pairs an opaque payload with the box that bounds it.
type Entry[T any] struct {
	Payload T
	Box     spatialmath.AABB
}

const noChild = -1

// node is either a leaf holding exactly one entry, or an internal node with exactly two children whose box is the
// union of the children's boxes.
type node struct {
	box   spatialmath.AABB
	left  int32
	right int32
	entry int32
}

func (n *node) isLeaf() bool {
	return n.left == noChild
}

// Tree is an immutable bounding volume hierarchy. Nodes live in a flat arena addressed by index; the root is the
// first node.
type Tree[T any] struct {
	nodes   []node
	entries []Entry[T]
}

// Len returns the number of entries stored in the tree.
func (t *Tree[T]) Len() int {
	return len(t.entries)
}

// Bounds returns the box enclosing every entry.
func (t *Tree[T]) Bounds() spatialmath.AABB {
	return t.nodes[0].box
}

// Depth returns the number of nodes on the longest root to leaf path.
func (t *Tree[T]) Depth() int {
	return t.depth(0)
}

func (t *Tree[T]) depth(idx int32) int {
	n := &t.nodes[idx]
	if n.isLeaf() {
		return 1
	}
	return 1 + max(t.depth(n.left), t.depth(n.right))
}

// Walk calls fn for every entry from left to right until fn returns false.
func (t *Tree[T]) Walk(fn func(Entry[T]) bool) {
	t.walk(0, fn)
}

func (t *Tree[T]) walk(idx int32, fn func(Entry[T]) bool) bool {
	n := &t.nodes[idx]
	if n.isLeaf() {
		return fn(t.entries[n.entry])
	}
	return t.walk(n.left, fn) && t.walk(n.right, fn)
}
