package sampler

import (
	"math/rand"
	"sort"
	"time"

	"github.com/nci/terracomp/utils"
)

// DensityClusterSampler draws training points from the spatially
// dense cores of each class. Candidate pixels are clustered, small
// and sparse clusters are rejected and the quota is drawn from the
// surviving clusters, which keeps the training set away from class
// boundaries and isolated misclassified pixels.
type DensityClusterSampler struct {
	MinPixels      int
	BufferPixels   int
	MinClusterSize int
	MinDensity     float64
	Clusterer      Clusterer
	Rand           *rand.Rand
}

func NewDensityClusterSampler(eps float64, minSamples, minPixels, buffer, minClusterSize int,
	minDensity float64, rnd *rand.Rand) *DensityClusterSampler {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &DensityClusterSampler{
		MinPixels:      minPixels,
		BufferPixels:   buffer,
		MinClusterSize: minClusterSize,
		MinDensity:     minDensity,
		Clusterer:      NewDBSCAN(eps, minSamples),
		Rand:           rnd,
	}
}

// Sample draws up to quota points per class. Classes with fewer than
// MinPixels interior candidates are skipped entirely and reported in
// the second return value; a class whose clusters are all rejected
// simply contributes no points. The operation succeeds with whatever
// the remaining classes produced.
func (s *DensityClusterSampler) Sample(r *utils.Int32Raster, quotas map[int32]int, mask []bool) (*SampleSet, []int32) {
	set := &SampleSet{Proj: r.Proj}
	var skipped []int32

	for _, class := range sortedClasses(quotas) {
		if class < 0 {
			continue
		}
		target := quotas[class]

		coords := candidateCoords(r, class, s.BufferPixels, mask)
		if len(coords) < s.MinPixels {
			skipped = append(skipped, class)
			continue
		}

		labels := s.Clusterer.Cluster(coords)

		clusters := make(map[int][]int)
		for i, label := range labels {
			if label == Noise {
				continue
			}
			clusters[label] = append(clusters[label], i)
		}

		ids := make([]int, 0, len(clusters))
		for id := range clusters {
			ids = append(ids, id)
		}
		sort.Ints(ids)

		for _, id := range ids {
			members := clusters[id]
			if len(members) < s.MinClusterSize {
				continue
			}
			density := float64(len(members)) / float64(len(coords))
			if density < s.MinDensity {
				continue
			}

			n := target
			if n > len(members) {
				n = len(members)
			}
			for _, pick := range s.Rand.Perm(len(members))[:n] {
				c := coords[members[pick]]
				set.Points = append(set.Points, SamplePoint{X: c[0], Y: c[1], Class: class})
			}
		}
	}
	return set, skipped
}
