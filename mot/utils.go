package mot

// IoU calculates Intersection over Union between two rectangles.
// Non-overlapping boxes give exactly 0, as does a zero union.
func IoU(r1, r2 Rectangle) float64 {
	ax1, ay1, ax2, ay2 := r1.Corners()
	bx1, by1, bx2, by2 := r2.Corners()

	w := maxFloat64(0, minFloat64(ax2, bx2)-maxFloat64(ax1, bx1))
	h := maxFloat64(0, minFloat64(ay2, by2)-maxFloat64(ay1, by1))
	interArea := w * h

	// Areas come from the corner form as well, so the intersection of a box
	// with itself equals its area bit for bit.
	union := (ax2-ax1)*(ay2-ay1) + (bx2-bx1)*(by2-by1) - interArea
	if union <= 0 {
		return 0.0
	}
	return minFloat64(1.0, interArea/union)
}

// IoUMatrix builds the dense |detections| x |tracks| overlap matrix.
// Every pair is evaluated: the assignment solver needs the full matrix.
func IoUMatrix(detections, tracks []Rectangle) [][]float64 {
	iouMatrix := make([][]float64, len(detections))
	for i, det := range detections {
		row := make([]float64, len(tracks))
		for j, trk := range tracks {
			row[j] = IoU(det, trk)
		}
		iouMatrix[i] = row
	}
	return iouMatrix
}

func maxFloat64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
