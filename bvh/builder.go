package bvh

import (
	"cmp"
	"slices"

	"github.com/pkg/errors"

	"github.com/janreitz/garden/spatialmath"
)

// ErrNoEntries is returned when a tree is requested over an empty list of entries.
var ErrNoEntries = errors.New("cannot build a bounding volume hierarchy from zero entries")

// New builds a tree over entries top-down. Each range of entries is split on the longest axis of its bounds at the
// spatial midpoint of that axis, by box center. When the midpoint leaves one side empty, for example because many
// boxes share a center, the range is split at the count median instead so that every level makes progress.
// The entries slice is copied and never modified.
func New[T any](entries []Entry[T]) (*Tree[T], error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	b := &builder[T]{
		entries: slices.Clone(entries),
		order:   make([]int32, len(entries)),
		scratch: make([]int32, len(entries)),
		nodes:   make([]node, 0, 2*len(entries)-1),
	}
	for i := range b.order {
		b.order[i] = int32(i)
	}
	if _, err := b.build(0, len(entries)); err != nil {
		return nil, err
	}
	return &Tree[T]{nodes: b.nodes, entries: b.entries}, nil
}

type builder[T any] struct {
	entries []Entry[T]
	// order is a permutation of entry indices; every node owns a contiguous range of it.
	order   []int32
	scratch []int32
	nodes   []node
}

func (b *builder[T]) center(i int32, axis spatialmath.Axis) float64 {
	return axis.Component(b.entries[i].Box.Center())
}

// build creates the subtree over order[lo:hi] and returns the index of its root node.
func (b *builder[T]) build(lo, hi int) (int32, error) {
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{left: noChild, right: noChild, entry: noChild})

	if hi-lo == 1 {
		e := b.order[lo]
		b.nodes[idx].box = b.entries[e].Box
		b.nodes[idx].entry = e
		return idx, nil
	}

	mid, err := b.split(lo, hi)
	if err != nil {
		return 0, err
	}
	left, err := b.build(lo, mid)
	if err != nil {
		return 0, err
	}
	right, err := b.build(mid, hi)
	if err != nil {
		return 0, err
	}
	b.nodes[idx].left = left
	b.nodes[idx].right = right
	b.nodes[idx].box = spatialmath.Union(b.nodes[left].box, b.nodes[right].box)
	return idx, nil
}

// split reorders order[lo:hi] into two non-empty halves and returns the index where the right half starts.
func (b *builder[T]) split(lo, hi int) (int, error) {
	bounds := b.entries[b.order[lo]].Box
	for _, e := range b.order[lo+1 : hi] {
		bounds = spatialmath.Union(bounds, b.entries[e].Box)
	}
	axis := bounds.LongestAxis()
	midpoint := axis.Component(bounds.Min()) + axis.Component(bounds.Extent())/2

	mid := b.partition(lo, hi, func(e int32) bool {
		return b.center(e, axis) <= midpoint
	})
	if mid > lo && mid < hi {
		return mid, nil
	}

	// count median
	slices.SortStableFunc(b.order[lo:hi], func(i, j int32) int {
		return cmp.Compare(b.center(i, axis), b.center(j, axis))
	})
	mid = lo + (hi-lo)/2
	if mid <= lo || mid >= hi {
		return 0, errors.Errorf("split of %d entries along %s made no progress", hi-lo, axis)
	}
	return mid, nil
}

// partition moves the entries of order[lo:hi] satisfying below to the front, keeping the relative order on both
// sides, and returns the index of the first entry that does not satisfy it.
func (b *builder[T]) partition(lo, hi int, below func(int32) bool) int {
	n := lo
	rest := b.scratch[:0]
	for _, e := range b.order[lo:hi] {
		if below(e) {
			b.order[n] = e
			n++
		} else {
			rest = append(rest, e)
		}
	}
	copy(b.order[n:hi], rest)
	return n
}
