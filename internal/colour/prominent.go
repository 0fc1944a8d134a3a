package colour

import (
	"image"
	"image/color"
	"sort"

	"github.com/EdlinOrg/prominentcolor"
)

// ProminentClusterer clusters samples with the prominentcolor k-means++ implementation.
// It has no injectable random source, so results are not reproducible under test.
type ProminentClusterer struct{}

// NewProminentClusterer creates a new ProminentClusterer.
func NewProminentClusterer() *ProminentClusterer {
	return &ProminentClusterer{}
}

// Cluster lays the samples out as a single-row image and runs KmeansWithAll
// without cropping, resizing or background masks so every sample is counted.
func (p *ProminentClusterer) Cluster(samples []Sample, k int) []Cluster {
	if len(samples) == 0 || k <= 0 {
		return []Cluster{}
	}

	img := image.NewNRGBA(image.Rect(0, 0, len(samples), 1))
	for i, s := range samples {
		img.SetNRGBA(i, 0, color.NRGBA{R: s.R, G: s.G, B: s.B, A: 255})
	}

	items, err := prominentcolor.KmeansWithAll(k, img, prominentcolor.ArgumentNoCropping, 0, nil)
	if err != nil || len(items) == 0 {
		// prominentcolor errors when it cannot seed k centres; use Lloyd instead.
		return NewKMeansClusterer(nil).Cluster(samples, k)
	}

	clusters := make([]Cluster, 0, len(items))
	for _, item := range items {
		if item.Cnt <= 0 {
			continue
		}
		clusters = append(clusters, Cluster{
			Centroid: [3]float64{float64(item.Color.R), float64(item.Color.G), float64(item.Color.B)},
			Size:     item.Cnt,
		})
	}
	sort.SliceStable(clusters, func(i, j int) bool {
		return clusters[i].Size > clusters[j].Size
	})
	return clusters
}
