package mot

import (
	"github.com/pkg/errors"
)

// Match pairs a detection index with a track index.
type Match struct {
	Detection int
	Track     int
	IoU       float64
}

// Association is the outcome of matching one frame's detections to tracks.
type Association struct {
	Matches             []Match
	UnmatchedDetections []int
	UnmatchedTracks     []int
}

// AssociateDetectionsToTracks solves the optimal assignment on the negated
// IoU matrix and keeps only pairs whose IoU exceeds iouThreshold. Rejected
// pairs leave both sides unmatched.
func AssociateDetectionsToTracks(detections, tracks []Rectangle, iouThreshold float64) (Association, error) {
	numDetections := len(detections)
	numTracks := len(tracks)
	if numDetections == 0 || numTracks == 0 {
		return Association{
			Matches:             []Match{},
			UnmatchedDetections: indexRange(numDetections),
			UnmatchedTracks:     indexRange(numTracks),
		}, nil
	}

	iouMatrix := IoUMatrix(detections, tracks)
	cost := make([][]float64, numDetections)
	for i, row := range iouMatrix {
		cost[i] = make([]float64, numTracks)
		for j, v := range row {
			cost[i][j] = -v
		}
	}
	assignment, err := HungarianAssign(cost)
	if err != nil {
		return Association{}, errors.Wrap(err, "can't associate detections")
	}

	matchedTracks := make([]bool, numTracks)
	result := Association{
		Matches:             make([]Match, 0, minInt(numDetections, numTracks)),
		UnmatchedDetections: make([]int, 0),
		UnmatchedTracks:     make([]int, 0),
	}
	for detIdx, trkIdx := range assignment {
		if trkIdx < 0 || iouMatrix[detIdx][trkIdx] <= iouThreshold {
			result.UnmatchedDetections = append(result.UnmatchedDetections, detIdx)
			continue
		}
		matchedTracks[trkIdx] = true
		result.Matches = append(result.Matches, Match{
			Detection: detIdx,
			Track:     trkIdx,
			IoU:       iouMatrix[detIdx][trkIdx],
		})
	}
	for trkIdx, matched := range matchedTracks {
		if !matched {
			result.UnmatchedTracks = append(result.UnmatchedTracks, trkIdx)
		}
	}
	return result, nil
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
