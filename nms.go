package jfda

import (
	"sort"

	"github.com/esimov/jfda/utils"
)

// NMSMode selects the overlap measure used by the non-maximum suppression.
type NMSMode int

const (
	// Union measures overlap as intersection over union.
	Union NMSMode = iota
	// Min measures overlap as intersection over the smaller of the two areas.
	Min
)

func (m NMSMode) String() string {
	switch m {
	case Union:
		return "Union"
	case Min:
		return "Min"
	}
	return "Unknown"
}

// Overlap returns the overlap ratio of two boxes under the given mode.
// Areas and the intersection follow the pixel inclusive (w+1)*(h+1) convention.
func Overlap(a, b BoundingBox, mode NMSMode) float32 {
	xx1 := utils.Max(a.X1, b.X1)
	yy1 := utils.Max(a.Y1, b.Y1)
	xx2 := utils.Min(a.X2, b.X2)
	yy2 := utils.Min(a.Y2, b.Y2)

	w := utils.Max(0, xx2-xx1+1)
	h := utils.Max(0, yy2-yy1+1)
	inter := w * h

	if mode == Min {
		return inter / utils.Min(a.Area(), b.Area())
	}
	return inter / (a.Area() + b.Area() - inter)
}

// NMS performs greedy non-maximum suppression. The highest scoring remaining box is
// kept and every other remaining box overlapping it by more than threshold is dropped,
// until no candidates are left. Boxes with equal scores are visited in input order.
// The returned set is in keep order and never aliases the input.
func NMS(boxes BoxSet, threshold float32, mode NMSMode) BoxSet {
	if len(boxes) == 0 {
		return BoxSet{}
	}

	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return boxes[order[i]].Score > boxes[order[j]].Score
	})

	keep := make(BoxSet, 0, len(boxes))
	rest := make([]int, 0, len(order))
	for len(order) > 0 {
		cur := boxes[order[0]]
		keep = append(keep, cur)

		rest = rest[:0]
		for _, idx := range order[1:] {
			if Overlap(cur, boxes[idx], mode) <= threshold {
				rest = append(rest, idx)
			}
		}
		order, rest = rest, order
	}
	return keep
}
