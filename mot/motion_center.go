package mot

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// centerMotion smooths the box center with a 2D Kalman filter. Width and
// height are taken from the last matched detection.
type centerMotion struct {
	tracker       *kalman_filter.Kalman2D
	width         float64
	height        float64
	prevCenter    Point
	currentCenter Point
}

func newCenterMotion(box Rectangle) (*centerMotion, error) {
	if err := box.Validate(); err != nil {
		return nil, err
	}
	center := box.Center()

	/* Kalman filter props */
	dt := 1.0
	ux := 0.0
	uy := 0.0
	stdDevA := 2.0
	stdDevMx := 0.1
	stdDevMy := 0.1
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy, kalman_filter.WithState2D(center.X, center.Y))
	return &centerMotion{
		tracker:       kf,
		width:         box.Width,
		height:        box.Height,
		prevCenter:    center,
		currentCenter: center,
	}, nil
}

func (m *centerMotion) Predict() {
	m.tracker.Predict()
	stateX, stateY := m.tracker.GetState()
	m.prevCenter = m.currentCenter
	m.currentCenter = Point{X: stateX, Y: stateY}
}

func (m *centerMotion) Update(box Rectangle) error {
	if err := box.Validate(); err != nil {
		return err
	}
	center := box.Center()
	err := m.tracker.Update(center.X, center.Y)
	if err != nil {
		return errors.Wrap(err, "can't update center filter")
	}
	stateX, stateY := m.tracker.GetState()
	m.currentCenter = Point{X: stateX, Y: stateY}
	m.width = box.Width
	m.height = box.Height
	return nil
}

func (m *centerMotion) Box() (Rectangle, error) {
	box := Rectangle{
		X:      m.currentCenter.X - m.width/2.0,
		Y:      m.currentCenter.Y - m.height/2.0,
		Width:  m.width,
		Height: m.height,
	}
	if err := box.Validate(); err != nil {
		return Rectangle{}, errors.Wrap(ErrDegenerateState, err.Error())
	}
	return box, nil
}

// Velocity is the center displacement over the last step.
func (m *centerMotion) Velocity() (float64, float64) {
	return m.currentCenter.X - m.prevCenter.X, m.currentCenter.Y - m.prevCenter.Y
}
