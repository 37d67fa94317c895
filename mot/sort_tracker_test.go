package mot

import (
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTracker(t *testing.T, cfg Config) *SortTracker {
	t.Helper()
	tracker, err := NewSortTracker(logs.NewTestingLog(t), cfg)
	require.NoError(t, err)
	return tracker
}

func outputIDs(objects []TrackedObject) []int {
	ids := make([]int, len(objects))
	for i, obj := range objects {
		ids[i] = obj.ID
	}
	return ids
}

func TestNewSortTrackerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinHits = 0
	_, err := NewSortTracker(logs.NewTestingLog(t), cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestSortTrackerStationaryObject(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	box := NewRect(10, 10, 20, 20)
	for frame := 1; frame <= 6; frame++ {
		objects, err := tracker.Update([]Detection{{Box: box, ClassLabel: "led", Score: 0.8}})
		require.NoError(t, err, "frame %d", frame)
		// Frames 1-3 are reported through the start-up grace period,
		// later ones because the track is confirmed
		require.Len(t, objects, 1, "frame %d", frame)
		obj := objects[0]
		assert.Equal(t, 1, obj.ID)
		assert.Equal(t, "led", obj.ClassLabel)
		assert.Equal(t, 0.8, obj.Score)
		assert.InDelta(t, 10.0, obj.Box.X, 1e-6)
		assert.InDelta(t, 10.0, obj.Box.Y, 1e-6)
		assert.InDelta(t, 20.0, obj.Box.Width, 1e-6)
		assert.InDelta(t, 20.0, obj.Box.Height, 1e-6)
	}
	assert.Equal(t, 6, tracker.FrameCount())

	snapshots := tracker.Tracks()
	require.Len(t, snapshots, 1)
	assert.Equal(t, TrackConfirmed, snapshots[0].State)
	assert.Equal(t, 5, snapshots[0].Hits)
	assert.Equal(t, 5, snapshots[0].Age)
}

func TestSortTrackerLateTrackNeedsMinHits(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	first := Detection{Box: NewRect(10, 10, 20, 20), ClassLabel: "led"}
	second := Detection{Box: NewRect(200, 200, 20, 20), ClassLabel: "button"}
	for frame := 1; frame <= 4; frame++ {
		_, err := tracker.Update([]Detection{first})
		require.NoError(t, err)
	}

	// Spawned after the grace period: reported once hits reach 3
	expected := map[int][]int{
		5: {1},
		6: {1},
		7: {1},
		8: {1, 2},
		9: {1, 2},
	}
	for frame := 5; frame <= 9; frame++ {
		objects, err := tracker.Update([]Detection{first, second})
		require.NoError(t, err)
		if diff := cmp.Diff(expected[frame], outputIDs(objects)); diff != "" {
			t.Errorf("frame %d: reported ids mismatch (-want +got):\n%s", frame, diff)
		}
	}
}

func TestSortTrackerRemovesAfterMaxAge(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	detection := Detection{Box: NewRect(10, 10, 20, 20), ClassLabel: "led"}
	for frame := 1; frame <= 4; frame++ {
		_, err := tracker.Update([]Detection{detection})
		require.NoError(t, err)
	}

	// First miss: not reported, still alive
	objects, err := tracker.Update(nil)
	require.NoError(t, err)
	assert.Empty(t, objects)
	snapshots := tracker.Tracks()
	require.Len(t, snapshots, 1)
	assert.Equal(t, TrackCoasting, snapshots[0].State)
	assert.Equal(t, 1, snapshots[0].TimeSinceUpdate)

	// Second miss exceeds max age 1
	objects, err = tracker.Update([]Detection{})
	require.NoError(t, err)
	assert.Empty(t, objects)
	assert.Empty(t, tracker.Tracks())

	// The object comes back with a fresh identifier
	objects, err = tracker.Update([]Detection{detection})
	require.NoError(t, err)
	assert.Empty(t, objects)
	snapshots = tracker.Tracks()
	require.Len(t, snapshots, 1)
	assert.Equal(t, 2, snapshots[0].ID)
	assert.Equal(t, TrackTentative, snapshots[0].State)
}

func TestSortTrackerCoastingKeepsIdentity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAge = 3
	tracker := newTestTracker(t, cfg)
	detection := Detection{Box: NewRect(10, 10, 20, 20), ClassLabel: "led"}
	present := map[int]bool{1: true, 2: true, 3: true, 4: true, 7: true, 8: true, 9: true}
	// After two misses the hits are reset, so the track is reported again
	// only when it is re-confirmed
	expected := map[int][]int{
		1: {1}, 2: {1}, 3: {1}, 4: {1},
		5: {}, 6: {},
		7: {}, 8: {}, 9: {1},
	}
	for frame := 1; frame <= 9; frame++ {
		var detections []Detection
		if present[frame] {
			detections = []Detection{detection}
		}
		objects, err := tracker.Update(detections)
		require.NoError(t, err)
		if diff := cmp.Diff(expected[frame], outputIDs(objects)); diff != "" {
			t.Errorf("frame %d: reported ids mismatch (-want +got):\n%s", frame, diff)
		}
	}
	snapshots := tracker.Tracks()
	require.Len(t, snapshots, 1)
	assert.Equal(t, 1, snapshots[0].ID)
	assert.Equal(t, 3, snapshots[0].Hits)
}

func TestSortTrackerSingleMissKeepsHits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxAge = 3
	tracker := newTestTracker(t, cfg)
	detection := Detection{Box: NewRect(10, 10, 20, 20), ClassLabel: "led"}
	for frame := 1; frame <= 4; frame++ {
		_, err := tracker.Update([]Detection{detection})
		require.NoError(t, err)
	}
	objects, err := tracker.Update(nil)
	require.NoError(t, err)
	assert.Empty(t, objects)

	objects, err = tracker.Update([]Detection{detection})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, outputIDs(objects))
}

func TestSortTrackerLowOverlapSpawnsTracks(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	_, err := tracker.Update([]Detection{{Box: NewRect(0, 0, 20, 20), ClassLabel: "led"}})
	require.NoError(t, err)

	objects, err := tracker.Update([]Detection{
		{Box: NewRect(100, 100, 20, 20), ClassLabel: "usb port"},
		{Box: NewRect(200, 200, 20, 20), ClassLabel: "usb plug"},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, outputIDs(objects))
	assert.Equal(t, "usb port", objects[0].ClassLabel)
	assert.Equal(t, "usb plug", objects[1].ClassLabel)

	snapshots := tracker.Tracks()
	require.Len(t, snapshots, 3)
	assert.Equal(t, TrackCoasting, snapshots[0].State)
}

func TestSortTrackerDegenerateDetection(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	objects, err := tracker.Update([]Detection{
		{Box: NewRect(0, 0, 0, 10), ClassLabel: "led"},
		{Box: NewRect(50, 50, 20, 20), ClassLabel: "button"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDegenerateBox)

	var frameErrs FrameErrors
	require.True(t, errors.As(err, &frameErrs))
	assert.Len(t, frameErrs, 1)

	// The valid detection is still tracked and reported
	require.Len(t, objects, 1)
	assert.Equal(t, 1, objects[0].ID)
	assert.Equal(t, "button", objects[0].ClassLabel)
	assert.Len(t, tracker.Tracks(), 1)
}

func TestSortTrackerOverflowingBoxRejected(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	objects, err := tracker.Update([]Detection{
		{Box: NewRect(0, 0, 1e200, 1e200), ClassLabel: "led"},
	})
	assert.ErrorIs(t, err, ErrDegenerateBox)
	assert.Empty(t, objects)
	assert.Empty(t, tracker.Tracks())
}

// rejectingMotion stands in for a filter whose update always fails.
type rejectingMotion struct {
	box Rectangle
}

func (m *rejectingMotion) Predict() {}

func (m *rejectingMotion) Update(box Rectangle) error {
	return errors.Wrap(ErrSingularInnovation, "can't compute Kalman gain")
}

func (m *rejectingMotion) Box() (Rectangle, error) {
	return m.box, nil
}

func (m *rejectingMotion) Velocity() (float64, float64) {
	return 0, 0
}

func TestSortTrackerFailedUpdateSpawnsTrack(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	detection := Detection{Box: NewRect(10, 10, 20, 20), ClassLabel: "led", Score: 0.6}
	_, err := tracker.Update([]Detection{detection})
	require.NoError(t, err)
	require.Len(t, tracker.tracks, 1)
	tracker.tracks[0].motion = &rejectingMotion{box: detection.Box}

	objects, err := tracker.Update([]Detection{detection})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSingularInnovation)

	// The detection gets its own track, reported through the grace period
	assert.Equal(t, []int{2}, outputIDs(objects))

	snapshots := tracker.Tracks()
	require.Len(t, snapshots, 2)
	assert.Equal(t, 1, snapshots[0].ID)
	assert.Equal(t, 1, snapshots[0].TimeSinceUpdate)
	assert.Equal(t, 0, snapshots[0].Hits)
	assert.Equal(t, TrackCoasting, snapshots[0].State)
	assert.Equal(t, 2, snapshots[1].ID)
	assert.Equal(t, 0, snapshots[1].TimeSinceUpdate)
}

func TestSortTrackerEmptyFrames(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	for i := 0; i < 3; i++ {
		objects, err := tracker.Update(nil)
		require.NoError(t, err)
		assert.Empty(t, objects)
	}
	assert.Equal(t, 3, tracker.FrameCount())
	assert.Empty(t, tracker.Tracks())
}

func TestSortTrackerClassFollowsLatestDetection(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	box := NewRect(10, 10, 20, 20)
	_, err := tracker.Update([]Detection{{Box: box, ClassLabel: "power port", Score: 0.4}})
	require.NoError(t, err)
	objects, err := tracker.Update([]Detection{{Box: box, ClassLabel: "power plug", Score: 0.7}})
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, 1, objects[0].ID)
	assert.Equal(t, "power plug", objects[0].ClassLabel)
	assert.Equal(t, 0.7, objects[0].Score)
}

func TestSortTrackerReset(t *testing.T) {
	tracker := newTestTracker(t, DefaultConfig())
	detection := Detection{Box: NewRect(10, 10, 20, 20), ClassLabel: "led"}
	_, err := tracker.Update([]Detection{detection})
	require.NoError(t, err)
	session := tracker.SessionID()

	tracker.Reset()
	assert.NotEqual(t, session, tracker.SessionID())
	assert.Equal(t, 0, tracker.FrameCount())
	assert.Empty(t, tracker.Tracks())

	objects, err := tracker.Update([]Detection{detection})
	require.NoError(t, err)
	// Grace period starts over, identifiers do not
	assert.Equal(t, []int{2}, outputIDs(objects))
}

func TestSortTrackerTwoMovingObjects(t *testing.T) {
	for _, kind := range []MotionModelKind{MotionModelSORT, MotionModelBBox, MotionModelCenter} {
		t.Run(string(kind), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MotionModel = kind
			tracker := newTestTracker(t, cfg)
			for frame := 0; frame < 25; frame++ {
				step := 2 * float64(frame)
				objects, err := tracker.Update([]Detection{
					{Box: NewRect(100+step, 50, 30, 30), ClassLabel: "led"},
					{Box: NewRect(400-step, 150, 30, 30), ClassLabel: "antenna"},
				})
				require.NoError(t, err, "frame %d", frame)
				require.Len(t, objects, 2, "frame %d", frame)
				for _, obj := range objects {
					switch obj.ClassLabel {
					case "led":
						assert.Equal(t, 1, obj.ID, "frame %d", frame)
					case "antenna":
						assert.Equal(t, 2, obj.ID, "frame %d", frame)
					}
				}
			}
			snapshots := tracker.Tracks()
			require.Len(t, snapshots, 2)
			assert.Greater(t, snapshots[0].VX, 0.0)
			assert.Less(t, snapshots[1].VX, 0.0)
		})
	}
}

func TestNewDefaultSortTracker(t *testing.T) {
	tracker := NewDefaultSortTracker(logs.NewTestingLog(t))
	assert.Equal(t, DefaultConfig(), tracker.Config())
	assert.Equal(t, 0, tracker.FrameCount())
}

func TestFrameErrorsMessage(t *testing.T) {
	fe := FrameErrors{
		errors.Wrap(ErrDegenerateBox, "detection 0"),
		errors.Wrap(ErrSingularInnovation, "track 3"),
	}
	assert.Equal(t, "detection 0: degenerate bounding box; track 3: singular innovation covariance", fe.Error())
	assert.ErrorIs(t, fe, ErrSingularInnovation)
	assert.NoError(t, FrameErrors{}.orNil())
}
