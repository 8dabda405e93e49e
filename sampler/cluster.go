package sampler

import "math"

// Noise is the label of points that belong to no cluster.
const Noise = -1

const unvisited = -2

// Clusterer abstracts the density based clustering primitive so the
// sampling logic stays independent of the clustering implementation.
// Cluster returns one label per input point, with Noise marking
// unclustered points. Labels are deterministic for a fixed input
// order.
type Clusterer interface {
	Cluster(points [][2]float64) []int
}

// DBSCAN groups points whose eps neighbourhood holds at least
// MinSamples points (the point itself included) and grows clusters
// through those core points. Neighbourhood queries run against a
// uniform grid of eps sized cells, so only the nine cells around a
// point are scanned.
type DBSCAN struct {
	Eps        float64
	MinSamples int
}

func NewDBSCAN(eps float64, minSamples int) *DBSCAN {
	return &DBSCAN{Eps: eps, MinSamples: minSamples}
}

type cellIndex struct {
	cells map[[2]int][]int
	eps   float64
}

func newCellIndex(points [][2]float64, eps float64) *cellIndex {
	idx := &cellIndex{cells: make(map[[2]int][]int), eps: eps}
	for i, p := range points {
		c := idx.cellOf(p)
		idx.cells[c] = append(idx.cells[c], i)
	}
	return idx
}

func (idx *cellIndex) cellOf(p [2]float64) [2]int {
	return [2]int{int(math.Floor(p[0] / idx.eps)), int(math.Floor(p[1] / idx.eps))}
}

// query returns the indices of all points within eps of point i,
// including i itself.
func (idx *cellIndex) query(points [][2]float64, i int) []int {
	p := points[i]
	c := idx.cellOf(p)
	eps2 := idx.eps * idx.eps

	var neighbours []int
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, j := range idx.cells[[2]int{c[0] + dx, c[1] + dy}] {
				ddx := points[j][0] - p[0]
				ddy := points[j][1] - p[1]
				if ddx*ddx+ddy*ddy <= eps2 {
					neighbours = append(neighbours, j)
				}
			}
		}
	}
	return neighbours
}

func (d *DBSCAN) Cluster(points [][2]float64) []int {
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	idx := newCellIndex(points, d.Eps)
	cluster := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}

		neighbours := idx.query(points, i)
		if len(neighbours) < d.MinSamples {
			labels[i] = Noise
			continue
		}

		labels[i] = cluster
		queue := neighbours
		for qi := 0; qi < len(queue); qi++ {
			j := queue[qi]
			if labels[j] == Noise {
				// border point reached from a core point
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster

			nb := idx.query(points, j)
			if len(nb) >= d.MinSamples {
				queue = append(queue, nb...)
			}
		}
		cluster++
	}
	return labels
}
