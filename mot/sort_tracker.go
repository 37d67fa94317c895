package mot

import (
	"slices"

	"github.com/cyclopcam/logs"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Detection is a single detector output for one frame.
type Detection struct {
	Box        Rectangle
	ClassLabel string
	// Advisory; carried through to the output only
	Score float64
}

// TrackedObject is a reported track for one frame.
type TrackedObject struct {
	ID         int
	ClassLabel string
	Score      float64
	Box        Rectangle
}

// TrackSnapshot is a read-only view of a live track.
type TrackSnapshot struct {
	ID              int
	ClassLabel      string
	Score           float64
	Age             int
	Hits            int
	TimeSinceUpdate int
	State           TrackState
	// Zero when the track's state is degenerate
	Box Rectangle
	VX  float64
	VY  float64
}

// SortTracker is implementation of Multi-object tracker (MOT) called SORT:
// Kalman-predicted boxes matched to detections by optimal IoU assignment.
//
// SortTracker is not safe for concurrent use. Frames must be fed one at a time.
type SortTracker struct {
	cfg Config
	log logs.Log
	// Identity of the current tracking session; changes on Reset
	sessionID uuid.UUID
	// Number of processed frames in this session
	frameCount int
	// Next track identifier. Never rewinds, so identifiers are unique for the
	// tracker's lifetime
	nextID int
	// Live tracks in creation order
	tracks []*Track
}

// NewSortTracker creates a new instance of SortTracker with specified parameters.
func NewSortTracker(logger logs.Log, cfg Config) (*SortTracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MotionModel == "" {
		cfg.MotionModel = MotionModelSORT
	}
	return &SortTracker{
		cfg:       cfg,
		log:       logger,
		sessionID: uuid.New(),
		nextID:    1,
		tracks:    make([]*Track, 0),
	}, nil
}

// NewDefaultSortTracker creates a SortTracker with DefaultConfig.
func NewDefaultSortTracker(logger logs.Log) *SortTracker {
	tracker, err := NewSortTracker(logger, DefaultConfig())
	if err != nil {
		// DefaultConfig always validates
		panic(err)
	}
	return tracker
}

// Config returns tracker's parameters
func (tracker *SortTracker) Config() Config {
	return tracker.cfg
}

// SessionID returns identifier of the current tracking session
func (tracker *SortTracker) SessionID() uuid.UUID {
	return tracker.sessionID
}

// FrameCount returns number of frames processed since creation or last Reset
func (tracker *SortTracker) FrameCount() int {
	return tracker.frameCount
}

// Reset drops every track and starts a new session. Track identifiers keep
// increasing across sessions.
func (tracker *SortTracker) Reset() {
	tracker.tracks = make([]*Track, 0)
	tracker.frameCount = 0
	tracker.sessionID = uuid.New()
}

// Tracks returns snapshots of all live tracks, including tentative and
// coasting ones.
func (tracker *SortTracker) Tracks() []TrackSnapshot {
	snapshots := make([]TrackSnapshot, 0, len(tracker.tracks))
	for _, track := range tracker.tracks {
		box, err := track.GetBBox()
		if err != nil {
			box = Rectangle{}
		}
		vx, vy := track.Velocity()
		snapshots = append(snapshots, TrackSnapshot{
			ID:              track.id,
			ClassLabel:      track.classLabel,
			Score:           track.score,
			Age:             track.age,
			Hits:            track.hits,
			TimeSinceUpdate: track.timeSinceUpdate,
			State:           track.State(tracker.cfg.MinHits, tracker.cfg.MaxAge),
			Box:             box,
			VX:              vx,
			VY:              vy,
		})
	}
	return snapshots
}

// Update processes one frame of detections and returns the tracks to report
// for this frame: matched in this frame and either confirmed or within the
// start-up grace period.
//
// Problems local to one detection or one track (degenerate boxes, failed
// filter updates) do not stop the frame. They are returned as FrameErrors
// next to a complete output.
func (tracker *SortTracker) Update(detections []Detection) ([]TrackedObject, error) {
	tracker.frameCount++
	frameErrs := FrameErrors{}

	// Reject degenerate detections before they reach any filter
	valid := make([]Detection, 0, len(detections))
	validBoxes := make([]Rectangle, 0, len(detections))
	for i, detection := range detections {
		if err := detection.Box.Validate(); err != nil {
			err = errors.Wrapf(err, "frame %d: detection %d dropped", tracker.frameCount, i)
			tracker.log.Warnf("SORT: %v", err)
			frameErrs = append(frameErrs, err)
			continue
		}
		valid = append(valid, detection)
		validBoxes = append(validBoxes, detection.Box)
	}

	// Predict every track before association. Tracks with a degenerate
	// prediction keep a zero box: it overlaps nothing, so they coast.
	predicted := make([]Rectangle, len(tracker.tracks))
	for i, track := range tracker.tracks {
		track.Predict()
		box, err := track.GetBBox()
		if err != nil {
			err = errors.Wrapf(err, "frame %d: track %d prediction", tracker.frameCount, track.id)
			tracker.log.Warnf("SORT: %v", err)
			frameErrs = append(frameErrs, err)
			continue
		}
		predicted[i] = box
	}

	association, err := AssociateDetectionsToTracks(validBoxes, predicted, tracker.cfg.IoUThreshold)
	if err != nil {
		err = errors.Wrapf(err, "frame %d", tracker.frameCount)
		tracker.log.Errorf("SORT: %v", err)
		frameErrs = append(frameErrs, err)
		association = Association{
			UnmatchedDetections: indexRange(len(valid)),
		}
	}

	unmatched := association.UnmatchedDetections
	for _, match := range association.Matches {
		track := tracker.tracks[match.Track]
		if err := track.Update(valid[match.Detection]); err != nil {
			// The track keeps its prediction; the detection gets its own track
			err = errors.Wrapf(err, "frame %d", tracker.frameCount)
			tracker.log.Warnf("SORT: %v", err)
			frameErrs = append(frameErrs, err)
			unmatched = append(unmatched, match.Detection)
		}
	}
	slices.Sort(unmatched)

	for _, detIdx := range unmatched {
		track, err := newTrack(tracker.nextID, valid[detIdx], tracker.cfg.MotionModel, tracker.cfg.MaxHistory)
		if err != nil {
			err = errors.Wrapf(err, "frame %d", tracker.frameCount)
			tracker.log.Warnf("SORT: %v", err)
			frameErrs = append(frameErrs, err)
			continue
		}
		tracker.nextID++
		if tracker.cfg.Verbose {
			tracker.log.Infof("SORT: frame %d: new '%v' track %d at %.1f,%.1f", tracker.frameCount, track.classLabel, track.id, valid[detIdx].Box.Center().X, valid[detIdx].Box.Center().Y)
		}
		tracker.tracks = append(tracker.tracks, track)
	}

	// Report and prune in one pass, after every matching decision is final
	output := make([]TrackedObject, 0, len(tracker.tracks))
	alive := tracker.tracks[:0]
	for _, track := range tracker.tracks {
		if track.timeSinceUpdate < 1 && (track.hits >= tracker.cfg.MinHits || tracker.frameCount <= tracker.cfg.MinHits) {
			box, err := track.GetBBox()
			if err != nil {
				err = errors.Wrapf(err, "frame %d: track %d not reported", tracker.frameCount, track.id)
				tracker.log.Warnf("SORT: %v", err)
				frameErrs = append(frameErrs, err)
			} else {
				output = append(output, TrackedObject{
					ID:         track.id,
					ClassLabel: track.classLabel,
					Score:      track.score,
					Box:        box,
				})
			}
		}
		if track.timeSinceUpdate > tracker.cfg.MaxAge {
			if tracker.cfg.Verbose {
				tracker.log.Infof("SORT: frame %d: track %d ('%v') removed after %d missed frames, travelled %.1f px", tracker.frameCount, track.id, track.classLabel, track.timeSinceUpdate, track.travelled())
			}
			continue
		}
		alive = append(alive, track)
	}
	// Let removed tracks be collected
	for i := len(alive); i < len(tracker.tracks); i++ {
		tracker.tracks[i] = nil
	}
	tracker.tracks = alive

	return output, frameErrs.orNil()
}
