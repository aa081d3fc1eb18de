package bvh

import (
	"github.com/golang/geo/r3"
)

// Nearest returns the entry whose box has the smallest signed distance to pt. On equal distances the entry
// found in the left subtree wins, so results are deterministic for a given tree.
func (t *Tree[T]) Nearest(pt r3.Vector) Entry[T] {
	e, _ := t.nearest(0, pt)
	return t.entries[e]
}

// nearest returns the index of the closest entry under node idx and its signed distance to pt.
//
// A child whose box does not contain pt bounds everything beneath it: every leaf box lies inside that child's
// box, so no leaf there can be closer than the child box itself. That bound is used to skip a sibling after the
// containing side has been searched.
func (t *Tree[T]) nearest(idx int32, pt r3.Vector) (int32, float64) {
	n := &t.nodes[idx]
	if n.isLeaf() {
		return n.entry, n.box.SignedDistance(pt)
	}
	left, right := &t.nodes[n.left], &t.nodes[n.right]
	inLeft, inRight := left.box.Contains(pt), right.box.Contains(pt)

	switch {
	case inLeft && !inRight:
		le, ld := t.nearest(n.left, pt)
		if ld <= right.box.SignedDistance(pt) {
			return le, ld
		}
		re, rd := t.nearest(n.right, pt)
		return closer(le, ld, re, rd)
	case inRight && !inLeft:
		re, rd := t.nearest(n.right, pt)
		if rd < left.box.SignedDistance(pt) {
			return re, rd
		}
		le, ld := t.nearest(n.left, pt)
		return closer(le, ld, re, rd)
	default:
		le, ld := t.nearest(n.left, pt)
		re, rd := t.nearest(n.right, pt)
		return closer(le, ld, re, rd)
	}
}

// closer picks the left candidate unless the right one is strictly closer.
func closer(le int32, ld float64, re int32, rd float64) (int32, float64) {
	if rd < ld {
		return re, rd
	}
	return le, ld
}

// InRadius returns the payload of every entry whose box lies within radius of pt, measured with the box signed
// distance. A NaN point or radius matches nothing. The result is never nil. Its order follows the tree from left to right, which is deterministic but
// carries no meaning.
func (t *Tree[T]) InRadius(pt r3.Vector, radius float64) []T {
	found := []T{}
	t.VisitInRadius(pt, radius, func(e Entry[T]) bool {
		found = append(found, e.Payload)
		return true
	})
	return found
}

// VisitInRadius calls fn for every entry InRadius would return, without allocating. Returning false from fn ends
// the traversal early.
func (t *Tree[T]) VisitInRadius(pt r3.Vector, radius float64, fn func(Entry[T]) bool) {
	t.visitInRadius(0, pt, radius, fn)
}

func (t *Tree[T]) visitInRadius(idx int32, pt r3.Vector, radius float64, fn func(Entry[T]) bool) bool {
	n := &t.nodes[idx]
	// negated so that a NaN distance or radius prunes
	if !(n.box.SignedDistance(pt) <= radius) {
		return true
	}
	if n.isLeaf() {
		return fn(t.entries[n.entry])
	}
	return t.visitInRadius(n.left, pt, radius, fn) && t.visitInRadius(n.right, pt, radius, fn)
}
