package seg

import (
	"math"
	"math/rand"
)

// maxKMeansIterations caps Lloyd refinement. Well-separated body
// features converge in far fewer iterations; the cap only guards
// pathological inputs.
const maxKMeansIterations = 300

// kmeans clusters points (each a row of equal dimension) into k groups
// with Lloyd's algorithm and returns the cluster id per point plus the
// final centroids.
//
// Every step is deterministic for identical input and seed: initial
// centroids are the first k points of a seed-driven permutation,
// point-to-centroid assignment breaks distance ties toward the lowest
// centroid id, and an emptied cluster is re-seeded with the point
// farthest from its current centroid (lowest index on ties). Two runs
// with the same input are bit-identical.
func kmeans(points [][]float64, k int, seed int64) (assign []int, centroids [][]float64) {
	n := len(points)
	dim := len(points[0])

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(n)
	centroids = make([][]float64, k)
	for c := 0; c < k; c++ {
		centroids[c] = append([]float64(nil), points[perm[c]]...)
	}

	assign = make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	counts := make([]int, k)
	for iter := 0; iter < maxKMeansIterations; iter++ {
		changed := false
		for i, p := range points {
			c := nearestCentroid(p, centroids)
			if c != assign[i] {
				assign[i] = c
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// Recompute centroids as member means.
		for c := range centroids {
			counts[c] = 0
			for d := 0; d < dim; d++ {
				centroids[c][d] = 0
			}
		}
		for i, c := range assign {
			counts[c]++
			for d := 0; d < dim; d++ {
				centroids[c][d] += points[i][d]
			}
		}
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < dim; d++ {
				centroids[c][d] /= float64(counts[c])
			}
		}
		// Re-seed empties only after all surviving centroids are means,
		// so the farthest-point scan measures against final positions.
		for c := range centroids {
			if counts[c] == 0 {
				reseedEmpty(points, assign, centroids, c)
			}
		}
	}
	return assign, centroids
}

// nearestCentroid returns the id of the centroid closest to p by
// squared Euclidean distance. Strict less-than keeps the lowest id on
// ties.
func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, cent := range centroids {
		d := sqDist(p, cent)
		if d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// reseedEmpty moves an emptied cluster's centroid onto the point
// currently farthest from its assigned centroid. The scan is a stable
// ascending pass, so ties pick the lowest point index.
func reseedEmpty(points [][]float64, assign []int, centroids [][]float64, empty int) {
	far := 0
	farDist := -1.0
	for i, p := range points {
		d := sqDist(p, centroids[assign[i]])
		if d > farDist {
			far = i
			farDist = d
		}
	}
	copy(centroids[empty], points[far])
}

func sqDist(a, b []float64) float64 {
	sum := 0.0
	for d := range a {
		diff := a[d] - b[d]
		sum += diff * diff
	}
	return sum
}
