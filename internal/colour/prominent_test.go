package colour

import "testing"

func TestProminentClusterer(t *testing.T) {
	samples := make([]Sample, 0, 40)
	for i := 0; i < 30; i++ {
		samples = append(samples, Sample{R: 230, G: 20, B: 20})
	}
	for i := 0; i < 10; i++ {
		samples = append(samples, Sample{R: 20, G: 20, B: 230})
	}

	clusters := NewProminentClusterer().Cluster(samples, 2)
	if len(clusters) == 0 {
		t.Fatal("Cluster() returned no clusters")
	}
	for i, c := range clusters {
		if c.Size <= 0 {
			t.Errorf("cluster %d has size %d", i, c.Size)
		}
		if i > 0 && c.Size > clusters[i-1].Size {
			t.Errorf("clusters not ranked by size: %d after %d", c.Size, clusters[i-1].Size)
		}
	}
	if top := clusters[0].Centroid; top[0] <= top[2] {
		t.Errorf("largest cluster centroid = %v, want red", top)
	}
}

func TestProminentClustererEmpty(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
		k       int
	}{
		{"no samples", nil, 3},
		{"zero k", []Sample{{R: 1}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewProminentClusterer().Cluster(tt.samples, tt.k); len(got) != 0 {
				t.Errorf("Cluster() = %v, want empty", got)
			}
		})
	}
}
