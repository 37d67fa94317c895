package mot

import (
	"github.com/pkg/errors"
)

// KalmanFilter is a discrete linear-Gaussian filter with a 7-D state and a
// 4-D measurement. The model matrices are fixed for the filter's lifetime.
type KalmanFilter struct {
	// State estimate
	X Vec7
	// State covariance
	P Mat7
	// Transition model
	F Mat7
	// Observation model
	H Mat4x7
	// Process noise covariance
	Q Mat7
	// Measurement noise covariance
	R Mat4
}

// NewKalmanFilter creates a filter from an explicit initial state and model.
func NewKalmanFilter(x0 Vec7, p0, f Mat7, h Mat4x7, q Mat7, r Mat4) *KalmanFilter {
	return &KalmanFilter{
		X: x0,
		P: p0,
		F: f,
		H: h,
		Q: q,
		R: r,
	}
}

// Predict executes time update: x = F·x, P = F·P·Fᵗ + Q
func (kf *KalmanFilter) Predict() {
	kf.X = kf.F.MulVec(kf.X)
	kf.P = kf.F.Mul(kf.P).Mul(kf.F.T()).Add(kf.Q)
}

// Update executes measurement update. The gain is obtained by solving against
// the innovation covariance instead of inverting it. On error the filter is
// left untouched.
func (kf *KalmanFilter) Update(z Vec4) error {
	if !z.IsFinite() {
		return errors.Wrap(ErrNonFinite, "measurement")
	}
	y := z.Sub(kf.H.MulVec(kf.X))
	pht := kf.P.MulMat7x4(kf.H.T())
	s := kf.H.MulMat7x4(pht).Add(kf.R)

	// K·S = P·Hᵗ  <=>  Sᵗ·Kᵗ = (P·Hᵗ)ᵗ
	kt, err := solve4(s.T(), pht.T())
	if err != nil {
		return errors.Wrap(err, "can't compute Kalman gain")
	}
	k := kt.T()

	x := kf.X.Add(k.MulVec(y))
	p := Identity7().Sub(k.MulMat4x7(kf.H)).Mul(kf.P)
	if !x.IsFinite() || !p.IsFinite() {
		return errors.Wrap(ErrNonFinite, "posterior state")
	}
	kf.X = x
	kf.P = p
	return nil
}

// Innovation returns H·P·Hᵗ + R for the current covariance.
func (kf *KalmanFilter) Innovation() Mat4 {
	return kf.H.MulMat7x4(kf.P.MulMat7x4(kf.H.T())).Add(kf.R)
}

// SORT model constants: constant velocity for center and area, constant
// aspect ratio, unit time step.
var (
	sortInitialCovariance = Vec7{10, 10, 10, 10, 10000, 10000, 10000}
	sortProcessNoise      = Vec7{1, 1, 1, 1, 0.01, 0.01, 0.0001}
	sortMeasurementNoise  = Vec4{1, 1, 10, 10}
)

// SortTransition returns F: identity plus unit coupling of cx, cy, s to
// their velocities.
func SortTransition() Mat7 {
	f := Identity7()
	f[0][4] = 1
	f[1][5] = 1
	f[2][6] = 1
	return f
}

// SortObservation returns H: picks [cx, cy, s, r] out of the state.
func SortObservation() Mat4x7 {
	var h Mat4x7
	for i := 0; i < 4; i++ {
		h[i][i] = 1
	}
	return h
}

// NewSortKalmanFilter creates the filter used by SORT tracks, seeded from a
// measurement with zero velocities.
func NewSortKalmanFilter(z Vec4) *KalmanFilter {
	x0 := Vec7{z[0], z[1], z[2], z[3], 0, 0, 0}
	return NewKalmanFilter(
		x0,
		Diag7(sortInitialCovariance),
		SortTransition(),
		SortObservation(),
		Diag7(sortProcessNoise),
		Diag4(sortMeasurementNoise),
	)
}
