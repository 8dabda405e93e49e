package sampler

import (
	"math"
	"math/rand"
	"time"

	"github.com/nci/terracomp/utils"
)

// GridSampler lays a regular lattice over the interior bounding box
// of a raster and labels every lattice point with the raster value
// underneath it, nodata included. No class filtering happens here;
// the lattice is trimmed to exactly the requested point count.
type GridSampler struct {
	BufferPixels int
}

func linspace(from, to float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = from
		return out
	}
	step := (to - from) / float64(n-1)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}

func (s *GridSampler) Sample(r *utils.Int32Raster, total int) *SampleSet {
	set := &SampleSet{Proj: r.Proj}
	if total <= 0 {
		return set
	}

	// one extra lattice row and column so trimming still yields the
	// full requested count
	gridSize := int(math.Sqrt(float64(total))) + 1

	x0, y0 := utils.PixelXY(r.GeoTransform, s.BufferPixels, s.BufferPixels)
	x1, y1 := utils.PixelXY(r.GeoTransform, r.Height-s.BufferPixels, r.Width-s.BufferPixels)

	xs := linspace(x0, x1, gridSize)
	ys := linspace(y0, y1, gridSize)

	for _, x := range xs {
		for _, y := range ys {
			if len(set.Points) == total {
				return set
			}
			set.Points = append(set.Points, SamplePoint{X: x, Y: y, Class: sampleValue(r, x, y)})
		}
	}
	return set
}

// RandomSampler draws uniform random coordinates inside the raster
// bounds shrunk by a ground-unit buffer, independent of class
// balance, labelling each point with the raster value at that
// location.
type RandomSampler struct {
	BufferGround float64
	Rand         *rand.Rand
}

func NewRandomSampler(buffer float64, rnd *rand.Rand) *RandomSampler {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &RandomSampler{BufferGround: buffer, Rand: rnd}
}

func (s *RandomSampler) Sample(r *utils.Int32Raster, total int) *SampleSet {
	set := &SampleSet{Proj: r.Proj}

	xmin, ymin, xmax, ymax := utils.Bounds(r.GeoTransform, r.Height, r.Width)
	xmin += s.BufferGround
	ymin += s.BufferGround
	xmax -= s.BufferGround
	ymax -= s.BufferGround

	for i := 0; i < total; i++ {
		x := xmin + s.Rand.Float64()*(xmax-xmin)
		y := ymin + s.Rand.Float64()*(ymax-ymin)
		set.Points = append(set.Points, SamplePoint{X: x, Y: y, Class: sampleValue(r, x, y)})
	}
	return set
}

// StratifiedSampler draws min(quota, candidates) interior pixels per
// class uniformly at random, without the clustering and density
// filters of the training sampler. Built to produce test sets whose
// selection method is disjoint from the clustered training draw.
type StratifiedSampler struct {
	BufferPixels int
	Rand         *rand.Rand
}

func NewStratifiedSampler(buffer int, rnd *rand.Rand) *StratifiedSampler {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &StratifiedSampler{BufferPixels: buffer, Rand: rnd}
}

func (s *StratifiedSampler) Sample(r *utils.Int32Raster, quotas map[int32]int, mask []bool) *SampleSet {
	set := &SampleSet{Proj: r.Proj}

	for _, class := range sortedClasses(quotas) {
		if class < 0 {
			continue
		}
		coords := candidateCoords(r, class, s.BufferPixels, mask)
		if len(coords) == 0 {
			continue
		}

		n := quotas[class]
		if n > len(coords) {
			n = len(coords)
		}
		if n <= 0 {
			continue
		}
		for _, pick := range s.Rand.Perm(len(coords))[:n] {
			set.Points = append(set.Points, SamplePoint{X: coords[pick][0], Y: coords[pick][1], Class: class})
		}
	}
	return set
}
