package colour

import (
	"math"
	"math/rand"
	"sort"
	"time"
)

// DefaultMaxIterations bounds the Lloyd loop.
const DefaultMaxIterations = 50

// Cluster is a group of samples represented by its centroid and member count.
type Cluster struct {
	Centroid [3]float64 `json:"centroid"`
	Size     int        `json:"size"`
}

// Clusterer groups samples into at most k clusters.
type Clusterer interface {
	Cluster(samples []Sample, k int) []Cluster
}

// KMeansClusterer implements Lloyd's algorithm in RGB space.
// Centroids are seeded from the samples using the injected random source.
type KMeansClusterer struct {
	rng           *rand.Rand
	maxIterations int
}

// NewKMeansClusterer creates a clusterer drawing initial centroids from rng.
// A nil rng uses a time-seeded source.
func NewKMeansClusterer(rng *rand.Rand) *KMeansClusterer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // #nosec G404 - not security sensitive
	}
	return &KMeansClusterer{
		rng:           rng,
		maxIterations: DefaultMaxIterations,
	}
}

// WithMaxIterations sets the iteration bound. Values below 1 are treated as 1.
func (c *KMeansClusterer) WithMaxIterations(n int) *KMeansClusterer {
	c.maxIterations = max(n, 1)
	return c
}

// point3D represents a point in 3D RGB colour space.
type point3D struct {
	R, G, B float64
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// Cluster runs k-means over the samples. Clusters that end with no members are
// dropped; the rest are sorted by size, largest first.
func (c *KMeansClusterer) Cluster(samples []Sample, k int) []Cluster {
	if len(samples) == 0 || k <= 0 {
		return []Cluster{}
	}

	points := make([]point3D, len(samples))
	for i, s := range samples {
		points[i] = point3D{R: float64(s.R), G: float64(s.G), B: float64(s.B)}
	}

	// Duplicate initial centroids are possible and intended.
	centroids := make([]point3D, k)
	for i := range centroids {
		centroids[i] = points[c.rng.Intn(len(points))]
	}

	assignments := make([]int, len(points))
	for i := range assignments {
		assignments[i] = -1
	}

	for iter := 0; iter < c.maxIterations; iter++ {
		changed := false
		for i, p := range points {
			nearest := findNearestCentroid(p, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed = true
			}
		}
		if !changed {
			break
		}
		centroids = recalculateCentroids(points, assignments, centroids)
	}

	sizes := make([]int, k)
	for _, a := range assignments {
		sizes[a]++
	}

	clusters := make([]Cluster, 0, k)
	for i, centroid := range centroids {
		if sizes[i] == 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			Centroid: [3]float64{centroid.R, centroid.G, centroid.B},
			Size:     sizes[i],
		})
	}

	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size > clusters[j].Size
	})
	return clusters
}

// findNearestCentroid returns the index of the closest centroid. Ties go to the lower index.
func findNearestCentroid(p point3D, centroids []point3D) int {
	nearest := 0
	minDist := math.Inf(1)
	for i, centroid := range centroids {
		if d := p.distance(centroid); d < minDist {
			minDist = d
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves each centroid to the mean of its members.
// A centroid with no members keeps its previous position.
func recalculateCentroids(points []point3D, assignments []int, previous []point3D) []point3D {
	sums := make([]point3D, len(previous))
	counts := make([]int, len(previous))
	for i, p := range points {
		a := assignments[i]
		sums[a].R += p.R
		sums[a].G += p.G
		sums[a].B += p.B
		counts[a]++
	}

	next := make([]point3D, len(previous))
	for i := range previous {
		if counts[i] == 0 {
			next[i] = previous[i]
			continue
		}
		n := float64(counts[i])
		next[i] = point3D{R: sums[i].R / n, G: sums[i].G / n, B: sums[i].B / n}
	}
	return next
}
