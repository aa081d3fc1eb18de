package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Axis identifies one of the three cartesian axes.
type Axis int

// The cartesian axes, in tie-breaking order.
const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Component returns the coordinate of v along the axis.
func (a Axis) Component(v r3.Vector) float64 {
	switch a {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "x"
	case AxisY:
		return "y"
	default:
		return "z"
	}
}

// AABB is an axis aligned bounding box. It is a value type: every operation returns a new box and the
// center is always derived from the corners.
type AABB struct {
	min    r3.Vector
	max    r3.Vector
	center r3.Vector
}

// NewAABB creates a box from its minimum and maximum corners. Inverted or non-finite corners are rejected.
func NewAABB(min, max r3.Vector) (AABB, error) {
	if !R3VectorIsFinite(min) || !R3VectorIsFinite(max) {
		return AABB{}, errors.Errorf("aabb corners must be finite, got min %v max %v", min, max)
	}
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return AABB{}, errors.Errorf("aabb min %v exceeds max %v", min, max)
	}
	return newAABB(min, max), nil
}

// NewAABBFromCenter creates a box centered at center that extends halfExtent along every axis.
func NewAABBFromCenter(center r3.Vector, halfExtent float64) (AABB, error) {
	if halfExtent < 0 || math.IsNaN(halfExtent) {
		return AABB{}, errors.Errorf("half extent must be non-negative, got %f", halfExtent)
	}
	h := r3.Vector{X: halfExtent, Y: halfExtent, Z: halfExtent}
	return NewAABB(center.Sub(h), center.Add(h))
}

func newAABB(min, max r3.Vector) AABB {
	return AABB{min: min, max: max, center: min.Add(max).Mul(0.5)}
}

// Min returns the minimum corner.
func (b AABB) Min() r3.Vector {
	return b.min
}

// Max returns the maximum corner.
func (b AABB) Max() r3.Vector {
	return b.max
}

// Center returns the midpoint of the box.
func (b AABB) Center() r3.Vector {
	return b.center
}

// Extent returns the size of the box along each axis.
func (b AABB) Extent() r3.Vector {
	return b.max.Sub(b.min)
}

// LongestAxis returns the axis with the largest extent. Ties resolve to x, then y, then z.
func (b AABB) LongestAxis() Axis {
	e := b.Extent()
	switch {
	case e.X >= e.Y && e.X >= e.Z:
		return AxisX
	case e.Y >= e.Z:
		return AxisY
	default:
		return AxisZ
	}
}

// Union returns the smallest box enclosing both a and b.
func Union(a, b AABB) AABB {
	return newAABB(
		r3.Vector{X: math.Min(a.min.X, b.min.X), Y: math.Min(a.min.Y, b.min.Y), Z: math.Min(a.min.Z, b.min.Z)},
		r3.Vector{X: math.Max(a.max.X, b.max.X), Y: math.Max(a.max.Y, b.max.Y), Z: math.Max(a.max.Z, b.max.Z)},
	)
}

// Contains reports whether pt lies inside the box, faces included.
func (b AABB) Contains(pt r3.Vector) bool {
	return pt.X >= b.min.X && pt.X <= b.max.X &&
		pt.Y >= b.min.Y && pt.Y <= b.max.Y &&
		pt.Z >= b.min.Z && pt.Z <= b.max.Z
}

// SignedDistance returns the euclidean distance from pt to the box when pt is outside of it. When pt is inside,
// the negated distance to the nearest face is returned, so a deeper point is not necessarily more negative than a
// point near a face. The value is meant as a pruning bound. It is NaN when any coordinate of pt is NaN.
func (b AABB) SignedDistance(pt r3.Vector) float64 {
	outside := r3.Vector{
		X: axisGap(pt.X, b.min.X, b.max.X),
		Y: axisGap(pt.Y, b.min.Y, b.max.Y),
		Z: axisGap(pt.Z, b.min.Z, b.max.Z),
	}
	if outside.X > 0 || outside.Y > 0 || outside.Z > 0 {
		return outside.Norm()
	}
	return -b.pointPenetrationDepth(pt)
}

// pointPenetrationDepth returns the minimum distance needed to move a pt inside the box to one of its faces.
func (b AABB) pointPenetrationDepth(pt r3.Vector) float64 {
	depth := math.Inf(1)
	for _, a := range [3]Axis{AxisX, AxisY, AxisZ} {
		p := a.Component(pt)
		depth = math.Min(depth, math.Min(p-a.Component(b.min), a.Component(b.max)-p))
	}
	return depth
}

// axisGap is how far v lies outside [lo, hi], or zero if it is within. NaN is passed through.
func axisGap(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v):
		return v
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	default:
		return 0
	}
}

// Translated returns the box shifted by offset.
func (b AABB) Translated(offset r3.Vector) AABB {
	return newAABB(b.min.Add(offset), b.max.Add(offset))
}

// String returns a human readable string that represents the box.
func (b AABB) String() string {
	return fmt.Sprintf("Type: AABB | Min: X:%.3f, Y:%.3f, Z:%.3f | Max: X:%.3f, Y:%.3f, Z:%.3f",
		b.min.X, b.min.Y, b.min.Z, b.max.X, b.max.Y, b.max.Z)
}
