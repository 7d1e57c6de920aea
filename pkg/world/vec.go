package world

import "math"

// Vec3 is a world-space position reported by the host.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// SqrDistance avoids the square root when only ordering matters.
func (v Vec3) SqrDistance(o Vec3) float64 {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

func (v Vec3) Distance(o Vec3) float64 {
	return math.Sqrt(v.SqrDistance(o))
}

// HorizontalDistance ignores height, matching how movement speed is measured.
func (v Vec3) HorizontalDistance(o Vec3) float64 {
	dx, dz := v.X-o.X, v.Z-o.Z
	return math.Sqrt(dx*dx + dz*dz)
}
