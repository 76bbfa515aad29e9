// Package hitbox projects resolved skill ranges onto the 2D physics plane.
// Ranges are authored in 3D; only X/Y and the rotation about Z survive.
package hitbox

import (
	"math"

	"github.com/jakecoffman/cp"

	"github.com/milk9111/actskill/skill"
)

// Bounds returns the axis-aligned box of r placed at origin. flipX mirrors
// the range for a character facing left. Ranges without a size collapse to
// their offset.
func Bounds(r skill.Range, origin cp.Vector, flipX bool) (cp.BB, bool) {
	if r == nil {
		return cp.BB{}, false
	}
	center, angle := place(r, origin, flipX)
	size, _ := r.Size()
	hw, hh := size.X/2, size.Y/2

	c, s := math.Abs(math.Cos(angle)), math.Abs(math.Sin(angle))
	ex := hw*c + hh*s
	ey := hw*s + hh*c
	return cp.BB{L: center.X - ex, B: center.Y - ey, R: center.X + ex, T: center.Y + ey}, true
}

// BoundsOf projects every range in rc. A nil or non-modifying config yields
// nothing, leaving the caller on its base collider.
func BoundsOf(rc *skill.RangeConfig, origin cp.Vector, flipX bool) []cp.BB {
	if rc == nil || !rc.ModifyRange {
		return nil
	}
	var out []cp.BB
	for _, r := range rc.Ranges {
		if bb, ok := Bounds(r, origin, flipX); ok {
			out = append(out, bb)
		}
	}
	return out
}

// Overlaps reports whether any box in a intersects any box in b.
func Overlaps(a, b []cp.BB) bool {
	for _, x := range a {
		for _, y := range b {
			if x.Intersects(y) {
				return true
			}
		}
	}
	return false
}

// Shapes builds sensor shapes for rc in body-local space. Boxes without
// rotation use NewBox2, rotated boxes become polygons, spheres circles and
// capsules rounded segments. Unknown kinds fall back to their bounds.
func Shapes(body *cp.Body, rc *skill.RangeConfig, flipX bool) []*cp.Shape {
	if body == nil || rc == nil || !rc.ModifyRange {
		return nil
	}
	var shapes []*cp.Shape
	for _, r := range rc.Ranges {
		if r == nil {
			continue
		}
		shape := shapeFor(body, r, flipX)
		shape.SetSensor(true)
		shapes = append(shapes, shape)
	}
	return shapes
}

func shapeFor(body *cp.Body, r skill.Range, flipX bool) *cp.Shape {
	center, angle := place(r, cp.Vector{}, flipX)
	switch v := r.(type) {
	case *skill.SphereRange:
		return cp.NewCircle(body, v.Radius, center)
	case *skill.CapsuleRange:
		half := math.Max(0, v.Height/2-v.Radius)
		axis := rotate(cp.Vector{Y: half}, angle)
		return cp.NewSegment(body, center.Sub(axis), center.Add(axis), v.Radius)
	case *skill.BoxRange:
		if angle != 0 {
			hw, hh := v.Dimensions.X/2, v.Dimensions.Y/2
			corners := []cp.Vector{{X: -hw, Y: -hh}, {X: hw, Y: -hh}, {X: hw, Y: hh}, {X: -hw, Y: hh}}
			verts := make([]cp.Vector, len(corners))
			for i, c := range corners {
				verts[i] = center.Add(rotate(c, angle))
			}
			return cp.NewPolyShapeRaw(body, len(verts), verts, 0)
		}
	}
	bb, _ := Bounds(r, cp.Vector{}, flipX)
	return cp.NewBox2(body, bb, 0)
}

// place returns the range's centre and its rotation about Z in radians.
func place(r skill.Range, origin cp.Vector, flipX bool) (cp.Vector, float64) {
	offset, _ := r.Offset()
	x := offset.X
	var deg float64
	if rot, ok := r.Rotation(); ok {
		deg = rot.Z
	}
	if flipX {
		x = -x
		deg = -deg
	}
	return cp.Vector{X: origin.X + x, Y: origin.Y + offset.Y}, deg * math.Pi / 180
}

func rotate(v cp.Vector, angle float64) cp.Vector {
	c, s := math.Cos(angle), math.Sin(angle)
	return cp.Vector{X: v.X*c - v.Y*s, Y: v.X*s + v.Y*c}
}
