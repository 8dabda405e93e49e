package processor

import (
	"time"

	"github.com/nci/terracomp/utils"
)

// SelectWindow returns the smallest [lo, hi] index span such that
// every date in it falls inside the closed interval [start, end].
// Dates equal to either bound are included. The input dates must be
// sorted ascending, which makes the qualifying run contiguous; the
// selector does not sort. When no date qualifies it returns
// utils.ErrEmptyWindow rather than an empty span, so callers can
// skip aggregation for the band and range pair.
func SelectWindow(dates []time.Time, start, end time.Time) (int, int, error) {
	lo, hi := -1, -1
	for i, d := range dates {
		if d.Before(start) {
			continue
		}
		if d.After(end) {
			break
		}
		if lo < 0 {
			lo = i
		}
		hi = i
	}
	if lo < 0 {
		return 0, 0, utils.ErrEmptyWindow
	}
	return lo, hi, nil
}
