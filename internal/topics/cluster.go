package topics

import "math"

// kmeans runs spherical k-means over unit vectors. Seeding is deterministic
// farthest-point: the first non-zero vector, then repeatedly the vector least
// similar to every chosen centroid. Zero vectors are left unassigned (-1).
func kmeans(vectors [][]float64, k, maxIter int) (assign []int, centroids [][]float64) {
	assign = make([]int, len(vectors))
	for i := range assign {
		assign[i] = -1
	}
	var live []int
	for i, v := range vectors {
		if norm(v) > 0 {
			live = append(live, i)
		}
	}
	if len(live) == 0 || k <= 0 {
		return assign, nil
	}
	if k > len(live) {
		k = len(live)
	}

	centroids = seed(vectors, live, k)
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for _, i := range live {
			best := nearest(vectors[i], centroids)
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}
		centroids = recompute(vectors, assign, centroids)
	}
	return assign, centroids
}

func seed(vectors [][]float64, live []int, k int) [][]float64 {
	centroids := [][]float64{clone(vectors[live[0]])}
	// closest[i] is the highest similarity of live[i] to any chosen centroid
	closest := make([]float64, len(live))
	for j, i := range live {
		closest[j] = cosine(vectors[i], centroids[0])
	}
	for len(centroids) < k {
		pick := -1
		for j := range live {
			if pick == -1 || closest[j] < closest[pick] {
				pick = j
			}
		}
		c := clone(vectors[live[pick]])
		centroids = append(centroids, c)
		for j, i := range live {
			if s := cosine(vectors[i], c); s > closest[j] {
				closest[j] = s
			}
		}
	}
	return centroids
}

func nearest(v []float64, centroids [][]float64) int {
	best, bestSim := 0, math.Inf(-1)
	for c, centroid := range centroids {
		if s := cosine(v, centroid); s > bestSim {
			best, bestSim = c, s
		}
	}
	return best
}

// recompute sets each centroid to the normalized mean of its members. A
// centroid that lost every member keeps its previous position.
func recompute(vectors [][]float64, assign []int, prev [][]float64) [][]float64 {
	dim := len(prev[0])
	sums := make([][]float64, len(prev))
	counts := make([]int, len(prev))
	for i, c := range assign {
		if c < 0 {
			continue
		}
		if sums[c] == nil {
			sums[c] = make([]float64, dim)
		}
		for d, x := range vectors[i] {
			sums[c][d] += x
		}
		counts[c]++
	}
	out := make([][]float64, len(prev))
	for c := range prev {
		if counts[c] == 0 {
			out[c] = prev[c]
			continue
		}
		out[c] = normalize(sums[c])
	}
	return out
}

func centroidOf(vectors [][]float64, members []int) []float64 {
	if len(members) == 0 {
		return nil
	}
	sum := make([]float64, len(vectors[members[0]]))
	for _, i := range members {
		for d, x := range vectors[i] {
			sum[d] += x
		}
	}
	return normalize(sum)
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

func normalize(v []float64) []float64 {
	n := norm(v)
	if n == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

func clone(v []float64) []float64 {
	return append([]float64(nil), v...)
}
