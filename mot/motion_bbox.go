package mot

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// bboxMotion uses the 8-D Kalman filter for full bounding box dynamics.
// State vector: [cx, cy, w, h, vx, vy, vw, vh] - center position, size, and velocities.
type bboxMotion struct {
	tracker *kalman_filter.KalmanBBox
}

func newBBoxMotion(box Rectangle) (*bboxMotion, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	center := box.Center()

	// Kalman filter props. No control input: a zero-velocity prior matches
	// the SORT model's initial state.
	dt := 1.0
	uCx := 0.0
	uCy := 0.0
	uW := 0.0
	uH := 0.0
	stdDevA := 2.0
	stdDevMCx := 0.1
	stdDevMCy := 0.1
	stdDevMW := 0.1
	stdDevMH := 0.1
	kf := kalman_filter.NewKalmanBBox(
		dt, uCx, uCy, uW, uH,
		stdDevA, stdDevMCx, stdDevMCy, stdDevMW, stdDevMH,
		kalman_filter.WithStateBBox(center.X, center.Y, box.Width, box.Height),
	)
	return &bboxMotion{
		tracker: kf,
	}, nil
}

func (m *bboxMotion) Predict() {
	m.tracker.Predict()
}

func (m *bboxMotion) Update(box Rectangle) error {
	if err := box.Validate(); err != nil {
		return err
	}
	center := box.Center()
	err := m.tracker.Update(center.X, center.Y, box.Width, box.Height)
	if err != nil {
		return errors.Wrap(err, "can't update bbox filter")
	}
	return nil
}

func (m *bboxMotion) Box() (Rectangle, error) {
	cx, cy, w, h := m.tracker.GetState()
	box := Rectangle{
		X:      cx - w/2.0,
		Y:      cy - h/2.0,
		Width:  w,
		Height: h,
	}
	if err := box.Validate(); err != nil {
		return Rectangle{}, errors.Wrap(ErrDegenerateState, err.Error())
	}
	return box, nil
}

func (m *bboxMotion) Velocity() (float64, float64) {
	vx, vy, _, _ := m.tracker.GetVelocity()
	return vx, vy
}
