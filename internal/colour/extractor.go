package colour

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sort"
)

// Frequency floors. Records at or below the floor are dropped.
const (
	// PrimaryFrequencyFloor applies to the offloaded extractor and its primary synchronous fallback.
	PrimaryFrequencyFloor = 0.002

	// SimplifiedFrequencyFloor applies to the simplified inline path used for rendered screenshots.
	SimplifiedFrequencyFloor = 0.01
)

// Algorithm represents the clustering algorithm type.
type Algorithm string

const (
	// AlgorithmKMeans uses Lloyd's k-means over sampled pixels.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmProminent uses the prominentcolor k-means++ implementation.
	AlgorithmProminent Algorithm = "prominent"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{AlgorithmKMeans, AlgorithmProminent}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// NewClusterer creates a Clusterer for the given algorithm.
func NewClusterer(alg Algorithm, rng *rand.Rand) (Clusterer, error) {
	switch alg {
	case AlgorithmKMeans, "":
		return NewKMeansClusterer(rng), nil
	case AlgorithmProminent:
		return NewProminentClusterer(), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// ExtractOptions controls a single sampling and clustering pass.
type ExtractOptions struct {
	K              int     `json:"k"`
	AlphaThreshold int     `json:"alphaThreshold"`
	SampleStep     int     `json:"sampleStep"`
	Floor          float64 `json:"floor"`
}

// Extract samples the buffer, clusters the samples and builds ranked records.
// An image with no opaque pixels yields an empty result.
func Extract(buf []byte, opts ExtractOptions, clusterer Clusterer) []ColorRecord {
	samples := SamplePixels(buf, opts.SampleStep, opts.AlphaThreshold)
	if len(samples) == 0 {
		return []ColorRecord{}
	}
	clusters := clusterer.Cluster(samples, opts.K)
	return RecordsFromClusters(clusters, len(samples), opts.Floor)
}

// RecordsFromClusters converts clusters into records ranked by frequency.
// Frequency is size/totalSamples; records not above floor are dropped.
func RecordsFromClusters(clusters []Cluster, totalSamples int, floor float64) []ColorRecord {
	records := make([]ColorRecord, 0, len(clusters))
	if totalSamples <= 0 {
		return records
	}
	for _, cl := range clusters {
		if cl.Size <= 0 {
			continue
		}
		freq := float64(cl.Size) / float64(totalSamples)
		if freq <= floor {
			continue
		}
		records = append(records, NewColorRecord(
			int(math.Round(cl.Centroid[0])),
			int(math.Round(cl.Centroid[1])),
			int(math.Round(cl.Centroid[2])),
			freq,
		))
	}
	sortByFrequency(records)
	return records
}

func sortByFrequency(records []ColorRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Frequency > records[j].Frequency
	})
}
