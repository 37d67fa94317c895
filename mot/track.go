package mot

import (
	"github.com/pkg/errors"
)

// TrackState represents the lifecycle state of a track.
type TrackState string

const (
	TrackTentative TrackState = "tentative" // Not enough hits to be reported yet
	TrackConfirmed TrackState = "confirmed" // Matched in the latest frame with enough hits
	TrackCoasting  TrackState = "coasting"  // Missed at least the latest frame
	TrackDead      TrackState = "dead"      // Missed for longer than max age
)

// Track is a single tracked object: one motion model plus identity and
// lifecycle counters.
type Track struct {
	id         int
	classLabel string
	score      float64
	// Frames since creation
	age int
	// Matched detections; reset after prolonged misses
	hits int
	// Frames since the last matched detection
	timeSinceUpdate int
	motion          MotionModel
	history         []Rectangle
	maxHistory      int
}

// newTrack spawns a track from an unmatched detection.
func newTrack(id int, detection Detection, kind MotionModelKind, maxHistory int) (*Track, error) {
	motion, err := newMotionModel(kind, detection.Box)
	if err != nil {
		return nil, errors.Wrapf(err, "can't spawn track %d", id)
	}
	track := Track{
		id:         id,
		classLabel: detection.ClassLabel,
		score:      detection.Score,
		motion:     motion,
		history:    make([]Rectangle, 0, maxHistory),
		maxHistory: maxHistory,
	}
	track.appendHistory(detection.Box)
	return &track, nil
}

// GetID returns track's identifier
func (track *Track) GetID() int {
	return track.id
}

// GetClassLabel returns the class of the last matched detection
func (track *Track) GetClassLabel() string {
	return track.classLabel
}

// GetScore returns the score of the last matched detection
func (track *Track) GetScore() float64 {
	return track.score
}

func (track *Track) GetAge() int {
	return track.age
}

func (track *Track) GetHits() int {
	return track.hits
}

func (track *Track) GetTimeSinceUpdate() int {
	return track.timeSinceUpdate
}

// GetBBox returns the current box estimate of the motion model
func (track *Track) GetBBox() (Rectangle, error) {
	return track.motion.Box()
}

// Velocity returns the center velocity estimate, pixels per frame
func (track *Track) Velocity() (float64, float64) {
	return track.motion.Velocity()
}

// History returns track's recent box estimates, oldest first. Be careful:
// this is not copy of history, but reference to it
func (track *Track) History() []Rectangle {
	return track.history
}

// State classifies the track for the given lifecycle parameters.
func (track *Track) State(minHits, maxAge int) TrackState {
	switch {
	case track.timeSinceUpdate > maxAge:
		return TrackDead
	case track.timeSinceUpdate >= 1:
		return TrackCoasting
	case track.hits >= minHits:
		return TrackConfirmed
	default:
		return TrackTentative
	}
}

// Predict advances the track one frame. Hits are reset when the track had
// already been missing for more than one frame before this call.
func (track *Track) Predict() {
	track.motion.Predict()
	track.age++
	if track.timeSinceUpdate > 1 {
		track.hits = 0
	}
	track.timeSinceUpdate++
}

// Update corrects the track with a matched detection. If the motion model
// rejects the measurement, the track is left as predicted and the error is
// returned.
func (track *Track) Update(detection Detection) error {
	err := track.motion.Update(detection.Box)
	if err != nil {
		return errors.Wrapf(err, "can't update track %d", track.id)
	}
	track.timeSinceUpdate = 0
	track.hits++
	track.classLabel = detection.ClassLabel
	track.score = detection.Score
	if box, err := track.motion.Box(); err == nil {
		track.appendHistory(box)
	}
	return nil
}

// travelled is the center distance between the oldest and newest history
// entries.
func (track *Track) travelled() float64 {
	if len(track.history) < 2 {
		return 0
	}
	first := track.history[0].Center()
	last := track.history[len(track.history)-1].Center()
	return euclideanDistance(first, last)
}

func (track *Track) appendHistory(box Rectangle) {
	if track.maxHistory <= 0 {
		return
	}
	track.history = append(track.history, box)
	if len(track.history) > track.maxHistory {
		track.history = track.history[1:]
	}
}
