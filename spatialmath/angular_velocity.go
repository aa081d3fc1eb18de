package spatialmath

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// AngularVelocity contains angular velocity in rad/s across x/y/z axes.
type AngularVelocity r3.Vector

// OrientationToAngularVel calculates the world frame angular velocity that takes orientation from to orientation
// to over a time difference dt.
func OrientationToAngularVel(from, to quat.Number, dt float64) AngularVelocity {
	if dt <= 0 {
		return AngularVelocity{}
	}
	aa := QuatToR4AA(OrientationBetween(from, to))
	return AngularVelocity{
		X: aa.RX * aa.Theta / dt,
		Y: aa.RY * aa.Theta / dt,
		Z: aa.RZ * aa.Theta / dt,
	}
}

// Speed returns the magnitude of the angular velocity in rad/s.
func (av AngularVelocity) Speed() float64 {
	return r3.Vector(av).Norm()
}
