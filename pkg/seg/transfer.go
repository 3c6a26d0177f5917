package seg

import (
	"math"
	"runtime"
	"sync"

	"github.com/garmentsim/bodyseg/pkg/mesh"
)

// TransferResult is the output of the transfer method. Segmentation
// holds one entry per reference label (possibly empty). Unassigned
// lists target vertices, ascending, whose nearest reference vertex
// belongs to no reference label; they are reported rather than silently
// dropped. DroppedRefIndices counts reference indices that fell outside
// the reference mesh's vertex range and were ignored.
type TransferResult struct {
	Segmentation      Segmentation
	Unassigned        []int
	DroppedRefIndices int
}

// Transfer copies labels from a segmented reference mesh onto a target
// mesh. For every target vertex the nearest reference vertex by
// Euclidean distance is found (ties go to the lowest reference index)
// and the target vertex takes that reference vertex's label.
//
// Reference-data problems are tolerated, not fatal: out-of-range
// reference indices are skipped and counted, and when the reference
// segmentation claims a vertex under more than one label, the label
// that comes first in sorted label order wins. Coverage of the target
// is complete only if the reference segmentation covers the whole
// reference mesh; uncovered lookups land in Unassigned.
func Transfer(target, ref *mesh.Mesh, refSeg Segmentation) (*TransferResult, error) {
	if target == nil || target.IsEmpty() {
		return nil, &InvalidMeshError{Reason: "target mesh has no vertices"}
	}
	if ref == nil || ref.IsEmpty() {
		return nil, &InvalidMeshError{Reason: "reference mesh has no vertices"}
	}

	labelOf, dropped := buildReferenceTable(ref.VertexCount(), refSeg)
	nearest := nearestReference(target, ref)

	res := &TransferResult{
		Segmentation:      New(),
		DroppedRefIndices: dropped,
	}
	// Mirror the reference label set even for labels that attract no
	// target vertices.
	for _, l := range refSeg.Labels() {
		res.Segmentation[l] = []int{}
	}
	for i, refIdx := range nearest {
		l := labelOf[refIdx]
		if l == "" {
			res.Unassigned = append(res.Unassigned, i)
			continue
		}
		res.Segmentation.Assign(l, i)
	}
	return res, nil
}

// buildReferenceTable flattens a reference segmentation into a
// per-vertex label table. Labels are scanned in sorted order and the
// first claim on a vertex wins, making overlap resolution stable.
// Indices outside [0, vertexCount) are dropped and counted.
func buildReferenceTable(vertexCount int, refSeg Segmentation) (labelOf []Label, dropped int) {
	labelOf = make([]Label, vertexCount)
	for _, l := range refSeg.Labels() {
		for _, idx := range refSeg[l] {
			if idx < 0 || idx >= vertexCount {
				dropped++
				continue
			}
			if labelOf[idx] == "" {
				labelOf[idx] = l
			}
		}
	}
	return labelOf, dropped
}

// nearestReference finds, for each target vertex, the index of the
// closest reference vertex. The all-pairs scan is O(N·M) and dominates
// transfer cost, so target vertices are tiled across workers; each tile
// writes a disjoint slice range, keeping the merge deterministic. The
// ascending inner scan with strict less-than breaks distance ties
// toward the lowest reference index.
func nearestReference(target, ref *mesh.Mesh) []int {
	nearest := make([]int, target.VertexCount())

	workers := runtime.GOMAXPROCS(0)
	if workers > len(nearest) {
		workers = len(nearest)
	}
	tile := (len(nearest) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * tile
		end := start + tile
		if end > len(nearest) {
			end = len(nearest)
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				p := target.Positions[i]
				best := 0
				bestDist := math.Inf(1)
				for j, q := range ref.Positions {
					d := p.Sub(q).Length2()
					if d < bestDist {
						best = j
						bestDist = d
					}
				}
				nearest[i] = best
			}
		}(start, end)
	}
	wg.Wait()
	return nearest
}
