package seg

import (
	"math"

	"github.com/garmentsim/bodyseg/pkg/mesh"
)

// Side restricts a band to one side of the body. The lateral coordinate
// is the centered X position: negative is the body's left, positive the
// right.
type Side int

const (
	SideAny    Side = iota // no lateral sign requirement
	SideLeft               // lateral < 0
	SideRight              // lateral > 0
	SideCenter             // |lateral| < MaxLateral
)

func (s Side) String() string {
	switch s {
	case SideAny:
		return "any"
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	case SideCenter:
		return "center"
	default:
		return "unknown"
	}
}

// Band is one geometric assignment rule: a normalized-height interval
// plus a lateral-position predicate. Bands are evaluated as an ordered
// slice and the first match wins, so the ordering is part of the
// contract, not an accident of map iteration.
type Band struct {
	Label Label
	Min   float64 // normalized-height interval, inclusive
	Max   float64

	Side       Side
	MaxLateral float64 // if > 0, require |lateral| < MaxLateral
	Below      float64 // if BelowSet, require height < Below
	BelowSet   bool
	Above      float64 // if AboveSet, require height > Above
	AboveSet   bool
}

// Contains reports whether normalized height h lies in the band's
// interval. Both ends are inclusive; values slightly outside [0,1] from
// floating error at the extremes are handled like any other height.
func (b Band) Contains(h float64) bool {
	return h >= b.Min && h <= b.Max
}

// Matches evaluates the band's lateral-position predicate for a vertex
// at normalized height h and lateral coordinate x.
func (b Band) Matches(h, x float64) bool {
	switch b.Side {
	case SideLeft:
		if x >= 0 {
			return false
		}
	case SideRight:
		if x <= 0 {
			return false
		}
	case SideCenter:
		if math.Abs(x) >= b.MaxLateral {
			return false
		}
	default:
		if b.MaxLateral > 0 && math.Abs(x) >= b.MaxLateral {
			return false
		}
	}
	if b.BelowSet && h >= b.Below {
		return false
	}
	if b.AboveSet && h <= b.Above {
		return false
	}
	return true
}

// Midpoint returns the center of the band's height interval, used by
// the fallback rule for vertices matching no band.
func (b Band) Midpoint() float64 {
	return (b.Min + b.Max) / 2
}

// DefaultBands returns the six built-in body part bands in evaluation
// order. The order is a deliberate tie-break: body is listed first, so
// a vertex satisfying both the body and an arm predicate goes to body.
func DefaultBands() []Band {
	return []Band{
		{Label: Body, Min: 0.45, Max: 0.80, Side: SideCenter, MaxLateral: 0.3},
		{Label: LeftArm, Min: 0.45, Max: 0.80, Side: SideLeft},
		{Label: RightArm, Min: 0.45, Max: 0.80, Side: SideRight},
		{Label: LeftLeg, Min: 0.0, Max: 0.45, Side: SideLeft, Below: 0.5, BelowSet: true},
		{Label: RightLeg, Min: 0.0, Max: 0.45, Side: SideRight, Below: 0.5, BelowSet: true},
		{Label: FaceInternal, Min: 0.85, Max: 1.0, Above: 0.85, AboveSet: true},
	}
}

// FallbackLabel is where small regions are merged and unassigned
// vertices collected during geometric post-processing.
const FallbackLabel = Body

// MinRegionSize is the minimum vertex count a label must reach to
// survive geometric post-processing. Smaller regions are merged into
// FallbackLabel.
const MinRegionSize = 10

// Geometric segments a mesh with the six built-in bands. See
// GeometricWithBands.
func Geometric(m *mesh.Mesh) (Segmentation, error) {
	return GeometricWithBands(m, DefaultBands())
}

// GeometricWithBands assigns every vertex to a body part by normalized
// height and lateral position. The mesh is centered about its centroid
// first (the caller's mesh is not mutated); +Y must already be the
// vertical axis. Each vertex goes to the first band, in slice order,
// whose interval and predicate both hold. A vertex matching no band
// goes to the band whose interval midpoint is closest to the vertex's
// normalized height, first minimal distance winning.
//
// Post-processing then enforces the output contract: labels with fewer
// than MinRegionSize vertices are removed and their members merged into
// FallbackLabel, and every vertex index absent from all labels is added
// to FallbackLabel. The result is a partition of [0, VertexCount).
func GeometricWithBands(m *mesh.Mesh, bands []Band) (Segmentation, error) {
	if m == nil || m.IsEmpty() {
		return nil, &InvalidMeshError{Reason: "mesh has no vertices"}
	}
	if len(bands) == 0 {
		return nil, &InvalidParameterError{Name: "bands", Value: 0, Reason: "band list is empty"}
	}

	work := m.Clone()
	work.Center()

	minY, maxY := work.HeightBounds()
	height := maxY - minY
	if height <= 0 {
		return nil, &InvalidMeshError{Reason: "degenerate bounding box: zero vertical extent"}
	}

	s := New()
	for i, p := range work.Positions {
		h := (p.Y - minY) / height
		label, ok := matchBand(bands, h, p.X)
		if !ok {
			label = closestBand(bands, h)
		}
		s.Assign(label, i)
	}

	mergeSmallRegions(s)
	sweepUnassigned(s, m.VertexCount())
	return s, nil
}

// matchBand scans bands in order and returns the first whose interval
// and predicate both hold.
func matchBand(bands []Band, h, x float64) (Label, bool) {
	for _, b := range bands {
		if b.Contains(h) && b.Matches(h, x) {
			return b.Label, true
		}
	}
	return "", false
}

// closestBand returns the label of the band whose interval midpoint is
// nearest to h. Strict less-than keeps the first minimal-distance band
// in declaration order on ties.
func closestBand(bands []Band, h float64) Label {
	best := bands[0].Label
	bestDist := math.Abs(h - bands[0].Midpoint())
	for _, b := range bands[1:] {
		d := math.Abs(h - b.Midpoint())
		if d < bestDist {
			best = b.Label
			bestDist = d
		}
	}
	return best
}

// mergeSmallRegions deletes labels holding fewer than MinRegionSize
// vertices and moves their members to FallbackLabel. The fallback label
// itself is never deleted; merging it into itself would be a no-op.
func mergeSmallRegions(s Segmentation) {
	for _, l := range s.Labels() {
		if l == FallbackLabel {
			continue
		}
		if len(s[l]) < MinRegionSize {
			s[FallbackLabel] = append(s[FallbackLabel], s[l]...)
			delete(s, l)
		}
	}
}

// sweepUnassigned appends every vertex index in [0, vertexCount) that
// no label owns to FallbackLabel, in ascending order.
func sweepUnassigned(s Segmentation, vertexCount int) {
	seen := make([]bool, vertexCount)
	for _, idx := range s {
		for _, i := range idx {
			if i >= 0 && i < vertexCount {
				seen[i] = true
			}
		}
	}
	for i, ok := range seen {
		if !ok {
			s[FallbackLabel] = append(s[FallbackLabel], i)
		}
	}
}
