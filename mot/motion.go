package mot

import (
	"github.com/pkg/errors"
)

// MotionModelKind selects the linear motion model a track uses.
type MotionModelKind string

const (
	// MotionModelSORT is the 7-D model: center, area and aspect ratio, with
	// constant velocity on center and area.
	MotionModelSORT MotionModelKind = "sort"
	// MotionModelBBox is the 8-D model: center and size with their velocities.
	MotionModelBBox MotionModelKind = "bbox"
	// MotionModelCenter filters only the center; size follows the last detection.
	MotionModelCenter MotionModelKind = "center"
)

func (kind MotionModelKind) valid() bool {
	switch kind {
	case MotionModelSORT, MotionModelBBox, MotionModelCenter, "":
		return true
	}
	return false
}

// MotionModel is the per-track state estimator.
type MotionModel interface {
	// Predict advances the state one frame
	Predict()
	// Update corrects the state with a matched detection box
	Update(box Rectangle) error
	// Box returns the current box estimate
	Box() (Rectangle, error)
	// Velocity returns the center velocity in pixels per frame
	Velocity() (float64, float64)
}

func newMotionModel(kind MotionModelKind, box Rectangle) (MotionModel, error) {
	switch kind {
	case MotionModelSORT, "":
		return newSortMotion(box)
	case MotionModelBBox:
		return newBBoxMotion(box)
	case MotionModelCenter:
		return newCenterMotion(box)
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown motion model %q", kind)
	}
}

// sortMotion wraps KalmanFilter with the SORT box parametrisation.
type sortMotion struct {
	kf *KalmanFilter
}

func newSortMotion(box Rectangle) (*sortMotion, error) {
	z, err := BoxToMeasurement(box)
	if err != nil {
		return nil, err
	}
	return &sortMotion{
		kf: NewSortKalmanFilter(z),
	}, nil
}

// Predict zeroes the area velocity first if it would drive the area to zero
// or below.
func (m *sortMotion) Predict() {
	if m.kf.X[2]+m.kf.X[6] <= 0 {
		m.kf.X[6] = 0
	}
	m.kf.Predict()
}

func (m *sortMotion) Update(box Rectangle) error {
	z, err := BoxToMeasurement(box)
	if err != nil {
		return err
	}
	return m.kf.Update(z)
}

func (m *sortMotion) Box() (Rectangle, error) {
	return StateToBox(m.kf.X)
}

func (m *sortMotion) Velocity() (float64, float64) {
	return m.kf.X[4], m.kf.X[5]
}
