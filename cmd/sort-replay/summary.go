package main

import (
	"sort"

	"github.com/cyclopcam/logs"
	"gonum.org/v1/gonum/stat"
)

// trackStats counts in how many frames each track id was reported
type trackStats struct {
	frames   map[int]int
	problems int
}

func newTrackStats() *trackStats {
	return &trackStats{
		frames: make(map[int]int),
	}
}

func (ts *trackStats) observe(id int) {
	ts.frames[id]++
}

// lengths returns per-id report counts ordered by id.
func (ts *trackStats) lengths() []float64 {
	ids := make([]int, 0, len(ts.frames))
	for id := range ts.frames {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	lengths := make([]float64, len(ids))
	for i, id := range ids {
		lengths[i] = float64(ts.frames[id])
	}
	return lengths
}

func logSummary(logger logs.Log, ts *trackStats) {
	lengths := ts.lengths()
	if len(lengths) == 0 {
		logger.Infof("No tracks reported (%v frame problems)", ts.problems)
		return
	}
	mean, std := stat.MeanStdDev(lengths, nil)
	logger.Infof("Reported %v unique tracks: mean length %.2f frames, stddev %.2f, %v frame problems", len(lengths), mean, std, ts.problems)
}
