package seg

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/garmentsim/bodyseg/pkg/mesh"
)

// DefaultClusters is the default cluster count for the cluster method.
const DefaultClusters = 8

// ClusterSeed fixes the k-means random state so identical input yields
// bit-identical segmentations across runs.
const ClusterSeed int64 = 42

// featureDim is position (3) plus unit normal (3).
const featureDim = 6

// clusterLabelOrder assigns labels to clusters sorted by ascending
// centroid height, bottom to top. Clusters past the sixth all map to
// Body.
var clusterLabelOrder = []Label{LeftLeg, RightLeg, Body, LeftArm, RightArm, FaceInternal}

// Cluster segments a mesh by k-means over per-vertex features. Each
// vertex contributes a 6-dimensional feature: its position concatenated
// with its unit normal, each dimension standardized to zero mean and
// unit variance across the mesh. The mesh must carry per-vertex
// normals; k must be in [1, VertexCount].
//
// After clustering, the standardization is inverted on the cluster
// centroids and clusters are ordered by ascending centroid height. The
// lowest cluster becomes left_leg, then right_leg, body, left_arm,
// right_arm, face_internal; any further clusters are labeled body.
// Every vertex receives exactly one label and no minimum-size cleanup
// is applied.
func Cluster(m *mesh.Mesh, k int) (Segmentation, error) {
	if m == nil || m.IsEmpty() {
		return nil, &InvalidMeshError{Reason: "mesh has no vertices"}
	}
	if !m.HasNormals() {
		return nil, &InvalidMeshError{Reason: "cluster method requires per-vertex normals"}
	}
	n := m.VertexCount()
	if k < 1 || k > n {
		return nil, &InvalidParameterError{
			Name:   "clusters",
			Value:  k,
			Reason: fmt.Sprintf("must be in [1, %d]", n),
		}
	}

	work := m.Clone()
	work.Center()

	features := buildFeatures(work)
	means, scales := standardize(features)

	assign, centroids := kmeans(features, k, ClusterSeed)

	// Undo standardization on the centroids; only the height (Y,
	// feature dimension 1) is needed for label ordering.
	heights := make([]float64, k)
	for c := range centroids {
		heights[c] = centroids[c][1]*scales[1] + means[1]
	}

	labelOf := mapClustersToLabels(heights)

	s := New()
	for i, c := range assign {
		s.Assign(labelOf[c], i)
	}
	return s, nil
}

// buildFeatures returns one 6-dimensional row per vertex: position
// followed by normal.
func buildFeatures(m *mesh.Mesh) [][]float64 {
	features := make([][]float64, m.VertexCount())
	for i := range m.Positions {
		p := m.Positions[i]
		nr := m.Normals[i]
		features[i] = []float64{p.X, p.Y, p.Z, nr.X, nr.Y, nr.Z}
	}
	return features
}

// standardize rescales each feature dimension in place to zero mean and
// unit variance (population statistics) and returns the per-dimension
// mean and scale for inverse transforms. A constant dimension keeps
// scale 1 so it passes through unchanged.
func standardize(features [][]float64) (means, scales []float64) {
	means = make([]float64, featureDim)
	scales = make([]float64, featureDim)
	column := make([]float64, len(features))
	for d := 0; d < featureDim; d++ {
		for i := range features {
			column[i] = features[i][d]
		}
		means[d] = stat.Mean(column, nil)
		scales[d] = stat.PopStdDev(column, nil)
		if scales[d] == 0 {
			scales[d] = 1
		}
	}
	for i := range features {
		for d := 0; d < featureDim; d++ {
			features[i][d] = (features[i][d] - means[d]) / scales[d]
		}
	}
	return means, scales
}

// mapClustersToLabels orders cluster ids by ascending centroid height
// and assigns clusterLabelOrder bottom to top. Height ties keep the
// lower cluster id first.
func mapClustersToLabels(heights []float64) []Label {
	order := make([]int, len(heights))
	for c := range order {
		order[c] = c
	}
	sort.SliceStable(order, func(i, j int) bool {
		return heights[order[i]] < heights[order[j]]
	})

	labelOf := make([]Label, len(heights))
	for rank, c := range order {
		if rank < len(clusterLabelOrder) {
			labelOf[c] = clusterLabelOrder[rank]
		} else {
			labelOf[c] = Body
		}
	}
	return labelOf
}
