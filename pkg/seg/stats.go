package seg

import "sort"

// LabelStat is the per-label share of a segmentation.
type LabelStat struct {
	Label   Label
	Count   int
	Percent float64
}

// Summary reports per-label counts and percentages for a segmentation
// over a mesh with VertexCount vertices.
//
// Percentages divide by the mesh vertex count, not by the sum of label
// counts. For transfer results with unassigned vertices the percentages
// therefore total less than 100 — that undercount is an observable
// property of the method, not an accounting error.
type Summary struct {
	Stats         []LabelStat
	TotalAssigned int
	VertexCount   int
}

// Stats computes the summary for a segmentation. Entries are sorted by
// descending count, then label, for stable reporting.
func Stats(s Segmentation, vertexCount int) Summary {
	sum := Summary{
		TotalAssigned: s.Assigned(),
		VertexCount:   vertexCount,
	}
	for _, l := range s.Labels() {
		st := LabelStat{Label: l, Count: len(s[l])}
		if vertexCount > 0 {
			st.Percent = 100 * float64(st.Count) / float64(vertexCount)
		}
		sum.Stats = append(sum.Stats, st)
	}
	sort.SliceStable(sum.Stats, func(i, j int) bool {
		if sum.Stats[i].Count != sum.Stats[j].Count {
			return sum.Stats[i].Count > sum.Stats[j].Count
		}
		return sum.Stats[i].Label < sum.Stats[j].Label
	})
	return sum
}
