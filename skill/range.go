package skill

import (
	"fmt"
	"math"
	"sort"

	"gopkg.in/yaml.v3"
)

// Range is one hit/hurt volume. The getters report false when the shape has
// no such degree of freedom; the matching setter is then a no-op.
type Range interface {
	Kind() string
	Offset() (Vec3, bool)
	SetOffset(Vec3)
	Rotation() (Vec3, bool)
	SetRotation(Vec3)
	Size() (Vec3, bool)
	SetSize(Vec3)
	Clone() Range
}

const (
	RangeKindBox     = "box"
	RangeKindSphere  = "sphere"
	RangeKindCapsule = "capsule"
)

var rangeRegistry = map[string]func() Range{}

// RegisterRange registers a range factory by kind. Later registrations for
// the same kind replace earlier ones.
func RegisterRange(kind string, factory func() Range) {
	rangeRegistry[kind] = factory
}

// NewRange creates an empty range of the given kind.
func NewRange(kind string) (Range, error) {
	factory, ok := rangeRegistry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRangeKind, kind)
	}
	return factory(), nil
}

// RangeKinds lists the registered range kinds in sorted order.
func RangeKinds() []string {
	kinds := make([]string, 0, len(rangeRegistry))
	for k := range rangeRegistry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

func init() {
	RegisterRange(RangeKindBox, func() Range { return &BoxRange{Dimensions: Vec3{X: 1, Y: 1, Z: 1}} })
	RegisterRange(RangeKindSphere, func() Range { return &SphereRange{Radius: 0.5} })
	RegisterRange(RangeKindCapsule, func() Range { return &CapsuleRange{Radius: 0.5, Height: 2} })
}

// BoxRange is an oriented box.
type BoxRange struct {
	Center     Vec3 `yaml:"offset"`
	Angles     Vec3 `yaml:"rotation"`
	Dimensions Vec3 `yaml:"size"`
}

func (r *BoxRange) Kind() string           { return RangeKindBox }
func (r *BoxRange) Offset() (Vec3, bool)   { return r.Center, true }
func (r *BoxRange) SetOffset(v Vec3)       { r.Center = v }
func (r *BoxRange) Rotation() (Vec3, bool) { return r.Angles, true }
func (r *BoxRange) SetRotation(v Vec3)     { r.Angles = v }
func (r *BoxRange) Size() (Vec3, bool)     { return r.Dimensions, true }
func (r *BoxRange) SetSize(v Vec3)         { r.Dimensions = v }
func (r *BoxRange) Clone() Range           { c := *r; return &c }

// SphereRange has no rotation. Its size is the diameter on every axis.
type SphereRange struct {
	Center Vec3    `yaml:"offset"`
	Radius float64 `yaml:"radius"`
}

func (r *SphereRange) Kind() string           { return RangeKindSphere }
func (r *SphereRange) Offset() (Vec3, bool)   { return r.Center, true }
func (r *SphereRange) SetOffset(v Vec3)       { r.Center = v }
func (r *SphereRange) Rotation() (Vec3, bool) { return Vec3{}, false }
func (r *SphereRange) SetRotation(Vec3)       {}
func (r *SphereRange) Size() (Vec3, bool) {
	d := r.Radius * 2
	return Vec3{X: d, Y: d, Z: d}, true
}
func (r *SphereRange) SetSize(v Vec3) {
	r.Radius = math.Max(v.X, math.Max(v.Y, v.Z)) / 2
}
func (r *SphereRange) Clone() Range { c := *r; return &c }

// CapsuleRange is a Y-up capsule; size is (2*radius, height, 2*radius).
type CapsuleRange struct {
	Center Vec3    `yaml:"offset"`
	Angles Vec3    `yaml:"rotation"`
	Radius float64 `yaml:"radius"`
	Height float64 `yaml:"height"`
}

func (r *CapsuleRange) Kind() string           { return RangeKindCapsule }
func (r *CapsuleRange) Offset() (Vec3, bool)   { return r.Center, true }
func (r *CapsuleRange) SetOffset(v Vec3)       { r.Center = v }
func (r *CapsuleRange) Rotation() (Vec3, bool) { return r.Angles, true }
func (r *CapsuleRange) SetRotation(v Vec3)     { r.Angles = v }
func (r *CapsuleRange) Size() (Vec3, bool) {
	return Vec3{X: r.Radius * 2, Y: r.Height, Z: r.Radius * 2}, true
}
func (r *CapsuleRange) SetSize(v Vec3) {
	r.Radius = math.Max(v.X, v.Z) / 2
	r.Height = v.Y
}
func (r *CapsuleRange) Clone() Range { c := *r; return &c }

// RangeConfig is a frame's optional override of a volume set. Ranges are
// ignored unless ModifyRange is set.
type RangeConfig struct {
	ModifyRange bool
	Ranges      []Range
}

type rangeConfigOut struct {
	ModifyRange bool         `yaml:"modify_range"`
	Ranges      []*yaml.Node `yaml:"ranges,omitempty"`
}

type rangeConfigIn struct {
	ModifyRange bool        `yaml:"modify_range"`
	Ranges      []yaml.Node `yaml:"ranges"`
}

func (rc RangeConfig) MarshalYAML() (any, error) {
	out := rangeConfigOut{ModifyRange: rc.ModifyRange}
	for _, r := range rc.Ranges {
		if r == nil {
			continue
		}
		node, err := encodeKinded(r.Kind(), r)
		if err != nil {
			return nil, fmt.Errorf("skill: encode range %s: %w", r.Kind(), err)
		}
		out.Ranges = append(out.Ranges, node)
	}
	return out, nil
}

func (rc *RangeConfig) UnmarshalYAML(value *yaml.Node) error {
	var in rangeConfigIn
	if err := value.Decode(&in); err != nil {
		return err
	}
	var ranges []Range
	for i := range in.Ranges {
		node := &in.Ranges[i]
		if isNull(node) {
			continue
		}
		kind, err := nodeKind(node)
		if err != nil {
			return err
		}
		r, err := NewRange(kind)
		if err != nil {
			return fmt.Errorf("skill: line %d: %w", node.Line, err)
		}
		if err := node.Decode(r); err != nil {
			return err
		}
		ranges = append(ranges, r)
	}
	rc.ModifyRange = in.ModifyRange
	rc.Ranges = ranges
	return nil
}

// Clone deep-copies the config and every range in it.
func (rc *RangeConfig) Clone() RangeConfig {
	var c RangeConfig
	c.CopyFrom(rc)
	return c
}

// CopyFrom replaces rc's contents with deep copies of other's.
func (rc *RangeConfig) CopyFrom(other *RangeConfig) {
	if other == nil || other == rc {
		return
	}
	rc.ModifyRange = other.ModifyRange
	var ranges []Range
	for _, r := range other.Ranges {
		if r != nil {
			ranges = append(ranges, r.Clone())
		}
	}
	rc.Ranges = ranges
}
