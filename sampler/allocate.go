package sampler

import (
	"math"

	"github.com/nci/terracomp/utils"
)

// CountClasses tallies the pixel population of every class in a
// categorical raster. Negative ids and the nodata sentinel carry no
// class and are excluded. The second return is the total number of
// classified pixels.
func CountClasses(r *utils.Int32Raster) (map[int32]int, int) {
	nodata := int32(r.NoData)
	populations := make(map[int32]int)
	total := 0
	for _, v := range r.Data {
		if v < 0 || v == nodata {
			continue
		}
		populations[v]++
		total++
	}
	return populations, total
}

// TotalFromFraction converts a percentage of the classified pixel
// count into a target total sample size.
func TotalFromFraction(percent float64, nPixels int) int {
	return int(math.Round(percent / 100 * float64(nPixels)))
}

// Allocate apportions total samples across classes proportionally to
// their populations while guaranteeing every class at least floor
// samples where possible.
//
// The procedure: each class starts at ceil(proportion * total); any
// class below floor is raised to it. If the raised sum overshoots
// the total, the classes that started below floor are pinned at
// exactly floor and the entire overshoot is subtracted from the
// single class holding the largest quota. On extremely skewed
// populations that correction can push the largest class below the
// floor or below zero; the result is returned uncorrected so callers
// see the full allocation pressure instead of a silently clamped
// total.
func Allocate(populations []int, total, floor int) map[int]int {
	totalPopulation := 0
	for _, pop := range populations {
		totalPopulation += pop
	}

	initial := make([]int, len(populations))
	adjusted := make([]int, len(populations))
	adjustedSum := 0
	for i, pop := range populations {
		proportion := float64(pop) / float64(totalPopulation)
		initial[i] = int(math.Ceil(proportion * float64(total)))
		adjusted[i] = initial[i]
		if adjusted[i] < floor {
			adjusted[i] = floor
		}
		adjustedSum += adjusted[i]
	}

	if adjustedSum > total {
		pinnedSum := 0
		for i := range adjusted {
			if initial[i] < floor {
				adjusted[i] = floor
			}
			pinnedSum += adjusted[i]
		}

		largest := 0
		for i, size := range adjusted {
			if size > adjusted[largest] {
				largest = i
			}
		}
		adjusted[largest] -= pinnedSum - total
	}

	quotas := make(map[int]int, len(adjusted))
	for i, size := range adjusted {
		quotas[i] = size
	}
	return quotas
}
