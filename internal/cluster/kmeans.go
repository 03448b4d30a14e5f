// Package cluster implements a small, fully deterministic k-means used to
// group embedded free-text values. Determinism matters: the same dataset and
// seed must always produce the same clusters, so analysis results are
// reproducible across runs.
package cluster

import "math/rand"

const maxIterations = 25

// KMeans partitions vectors into k clusters with Lloyd's algorithm and a
// seeded initialization. It returns the per-vector cluster labels and the
// final centroids. k is clamped to the number of vectors.
func KMeans(vectors [][]float32, k int, seed int64) ([]int, [][]float32) {
	n := len(vectors)
	if n == 0 || k <= 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}
	dims := len(vectors[0])

	rng := rand.New(rand.NewSource(seed))
	centroids := make([][]float32, k)
	for i, idx := range rng.Perm(n)[:k] {
		centroids[i] = append([]float32(nil), vectors[idx]...)
	}

	labels := make([]int, n)
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, v := range vectors {
			best, bestDist := 0, sqDist(v, centroids[0])
			for c := 1; c < k; c++ {
				if d := sqDist(v, centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, v := range vectors {
			c := labels[i]
			counts[c]++
			for d, x := range v {
				sums[c][d] += float64(x)
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				// Reseed an empty cluster with the point farthest from
				// its current centroid.
				far, farDist := 0, -1.0
				for i, v := range vectors {
					if d := sqDist(v, centroids[labels[i]]); d > farDist {
						far, farDist = i, d
					}
				}
				centroids[c] = append([]float32(nil), vectors[far]...)
				labels[far] = c
				changed = true
				continue
			}
			for d := 0; d < dims; d++ {
				centroids[c][d] = float32(sums[c][d] / float64(counts[c]))
			}
		}

		if !changed && iter > 0 {
			break
		}
	}
	return labels, centroids
}

// Nearest returns the index of the vector closest to the centroid.
func Nearest(centroid []float32, vectors [][]float32, members []int) int {
	best, bestDist := -1, 0.0
	for _, i := range members {
		d := sqDist(vectors[i], centroid)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

func sqDist(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}
