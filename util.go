package main

import (
	"crypto/rand"
	"encoding/hex"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Local axes. Crafts face +Z, +Y is up.
var (
	axisRight   = mgl64.Vec3{1, 0, 0}
	axisUp      = mgl64.Vec3{0, 1, 0}
	axisForward = mgl64.Vec3{0, 0, 1}
)

// GenerateID returns a random hex string of the given byte length
func GenerateID(byteLen int) string {
	b := make([]byte, byteLen)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// GenerateUUID returns a random (v4) UUID string, used for session ids
func GenerateUUID() string {
	return uuid.NewString()
}

// Clamp restricts v to [min, max]
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Distance returns the distance between two points
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}

// DistanceSq returns the squared distance between two points
func DistanceSq(a, b mgl64.Vec3) float64 {
	d := b.Sub(a)
	return d.Dot(d)
}

// normalizeVec returns v scaled to unit length. ok is false for a zero vector.
func normalizeVec(v mgl64.Vec3) (mgl64.Vec3, bool) {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}, false
	}
	return v.Mul(1 / l), true
}

// clampLength shortens v to at most max
func clampLength(v mgl64.Vec3, max float64) mgl64.Vec3 {
	if v.Dot(v) > max*max {
		return v.Mul(max / v.Len())
	}
	return v
}

// angleBetween returns the angle in radians between two unit vectors
func angleBetween(a, b mgl64.Vec3) float64 {
	return math.Acos(Clamp(a.Dot(b), -1, 1))
}

// expLerpFactor is the frame-rate independent smoothing factor 1-exp(-speed*dt)
func expLerpFactor(speed, dt float64) float64 {
	return 1 - math.Exp(-speed*dt)
}

// lookRotation returns the orientation whose +Z axis points along dir with +Y kept up.
func lookRotation(dir mgl64.Vec3) mgl64.Quat {
	fwd, ok := normalizeVec(dir)
	if !ok {
		return mgl64.QuatIdent()
	}
	right := axisUp.Cross(fwd)
	if right.Len() < 1e-6 {
		// Looking straight up or down
		right = axisRight
	} else {
		right = right.Normalize()
	}
	up := fwd.Cross(right)
	m := mgl64.Mat3FromCols(right, up, fwd).Mat4()
	return mgl64.Mat4ToQuat(m).Normalize()
}

// slerpShortest interpolates orientations along the shorter arc
func slerpShortest(from, to mgl64.Quat, t float64) mgl64.Quat {
	if from.Dot(to) < 0 {
		to = to.Scale(-1)
	}
	return mgl64.QuatSlerp(from, to, t).Normalize()
}

// eulerYXZ builds an orientation from yaw (Y), pitch (X) and roll (Z), applied in that order.
func eulerYXZ(yaw, pitch, roll float64) mgl64.Quat {
	qy := mgl64.QuatRotate(yaw, axisUp)
	qx := mgl64.QuatRotate(pitch, axisRight)
	qz := mgl64.QuatRotate(roll, axisForward)
	return qy.Mul(qx).Mul(qz).Normalize()
}
