package embedding

import "image"

// ComputeIoU calculates Intersection over Union between two bounding boxes.
func ComputeIoU(a, b image.Rectangle) float64 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}

	intersection := float64(inter.Dx() * inter.Dy())
	union := float64(a.Dx()*a.Dy()+b.Dx()*b.Dy()) - intersection
	if union <= 0 {
		return 0
	}
	return intersection / union
}

// dedupeIoUThreshold is the overlap above which two detections are
// treated as the same face.
const dedupeIoUThreshold = 0.5

// DedupeDetections collapses heavily overlapping detections, keeping the
// one with the higher detector score. Order among the survivors follows
// the input, so downstream tie-breaks stay deterministic.
func DedupeDetections(dets []Detection) []Detection {
	if len(dets) < 2 {
		return dets
	}

	suppressed := make([]bool, len(dets))
	for i := range dets {
		if suppressed[i] {
			continue
		}
		for j := i + 1; j < len(dets); j++ {
			if suppressed[j] {
				continue
			}
			if ComputeIoU(dets[i].BBox, dets[j].BBox) < dedupeIoUThreshold {
				continue
			}
			if dets[j].Score > dets[i].Score {
				suppressed[i] = true
			} else {
				suppressed[j] = true
			}
		}
	}

	out := make([]Detection, 0, len(dets))
	for i, d := range dets {
		if !suppressed[i] {
			out = append(out, d)
		}
	}
	return out
}
