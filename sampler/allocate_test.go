package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nci/terracomp/utils"
)

func TestCountClasses(t *testing.T) {
	r := &utils.Int32Raster{
		Data:   []int32{1, 1, 2, 255, -1, 3},
		Height: 2,
		Width:  3,
		NoData: 255,
	}
	populations, total := CountClasses(r)
	assert.Equal(t, map[int32]int{1: 2, 2: 1, 3: 1}, populations)
	assert.Equal(t, 4, total)
}

func TestTotalFromFraction(t *testing.T) {
	assert.Equal(t, 25, TotalFromFraction(2.5, 1000))
	assert.Equal(t, 2, TotalFromFraction(1.5, 101))
	assert.Equal(t, 0, TotalFromFraction(0, 1000))
}

func TestAllocateProportional(t *testing.T) {
	quotas := Allocate([]int{10, 10, 80}, 100, 5)
	assert.Equal(t, map[int]int{0: 10, 1: 10, 2: 80}, quotas)
}

func TestAllocateFloorOvershoot(t *testing.T) {
	// raising the small classes to the floor overshoots the total and
	// the whole excess comes out of the largest class
	quotas := Allocate([]int{1, 1, 98}, 10, 5)
	assert.Equal(t, map[int]int{0: 5, 1: 5, 2: 0}, quotas)
}

func TestAllocateFloorWithoutOvershoot(t *testing.T) {
	quotas := Allocate([]int{50, 50}, 10, 2)
	assert.Equal(t, map[int]int{0: 5, 1: 5}, quotas)
}

func TestAllocateSingleClass(t *testing.T) {
	quotas := Allocate([]int{42}, 10, 5)
	assert.Equal(t, map[int]int{0: 10}, quotas)
}
