package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"

	"github.com/janreitz/garden/utils"
)

// ForwardAxis is the local axis an agent moves along before any rotation is applied.
var ForwardAxis = r3.Vector{X: 0, Y: 0, Z: -1}

// If two unit vectors have a dot product within this amount of +/-1 they are treated as parallel.
const parallelEpsilon = 1e-9

// NewZeroOrientation returns a quaternion which signifies no rotation.
func NewZeroOrientation() quat.Number {
	return quat.Number{Real: 1}
}

// OrientationBetween returns the rotation taking o1 to o2 in the world frame.
func OrientationBetween(o1, o2 quat.Number) quat.Number {
	return quat.Mul(o2, quat.Conj(o1))
}

// RotateVector rotates v by the unit quaternion q.
func RotateVector(q quat.Number, v r3.Vector) r3.Vector {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vector{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// Forward returns the direction an agent with orientation q is heading.
func Forward(q quat.Number) r3.Vector {
	return RotateVector(q, ForwardAxis)
}

// Facing returns the shortest-arc rotation taking ForwardAxis onto dir.
func Facing(dir r3.Vector) (quat.Number, error) {
	if dir.Norm2() == 0 || !R3VectorIsFinite(dir) {
		return quat.Number{}, errors.Errorf("cannot face degenerate direction %v", dir)
	}
	to := dir.Normalize()
	d := ForwardAxis.Dot(to)
	switch {
	case d > 1-parallelEpsilon:
		return NewZeroOrientation(), nil
	case d < -1+parallelEpsilon:
		// any axis perpendicular to ForwardAxis works for a half turn
		return (&R4AA{Theta: math.Pi, RX: 0, RY: 1, RZ: 0}).ToQuat()
	}
	axis := ForwardAxis.Cross(to)
	return NormalizeQuat(quat.Number{Real: 1 + d, Imag: axis.X, Jmag: axis.Y, Kmag: axis.Z}), nil
}

// RotateWorld applies r on top of q in the world frame and renormalizes the result to correct floating point drift.
func RotateWorld(q, r quat.Number) quat.Number {
	return NormalizeQuat(quat.Mul(r, q))
}

// NormalizeQuat scales q to unit length. A zero quaternion yields non-finite components, which callers are
// expected to check with QuatIsFinite.
func NormalizeQuat(q quat.Number) quat.Number {
	return quat.Scale(1/quat.Abs(q), q)
}

// QuatIsFinite reports whether every component of q is a finite number.
func QuatIsFinite(q quat.Number) bool {
	return isFinite(q.Real) && isFinite(q.Imag) && isFinite(q.Jmag) && isFinite(q.Kmag)
}

// R3VectorIsFinite reports whether every component of v is a finite number.
func R3VectorIsFinite(v r3.Vector) bool {
	return isFinite(v.X) && isFinite(v.Y) && isFinite(v.Z)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// RotationAngle returns the angle in radians of the rotation described by the unit quaternion q, in [0, pi].
func RotationAngle(q quat.Number) float64 {
	w := math.Abs(q.Real)
	if w > 1 {
		w = 1
	}
	return 2 * math.Acos(w)
}

// QuaternionAlmostEqual is an equality test for two quaternions. Since q and -q describe the same rotation,
// both signs are accepted.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := utils.Float64AlmostEqual(a.Real, b.Real, tol) && utils.Float64AlmostEqual(a.Imag, b.Imag, tol) &&
		utils.Float64AlmostEqual(a.Jmag, b.Jmag, tol) && utils.Float64AlmostEqual(a.Kmag, b.Kmag, tol)
	flipped := utils.Float64AlmostEqual(a.Real, -b.Real, tol) && utils.Float64AlmostEqual(a.Imag, -b.Imag, tol) &&
		utils.Float64AlmostEqual(a.Jmag, -b.Jmag, tol) && utils.Float64AlmostEqual(a.Kmag, -b.Kmag, tol)
	return same || flipped
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, epsilon) && utils.Float64AlmostEqual(a.Y, b.Y, epsilon) && utils.Float64AlmostEqual(a.Z, b.Z, epsilon)
}
