package mot

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrDegenerateBox is returned for boxes with non-positive or non-finite size
	ErrDegenerateBox = errors.New("degenerate bounding box")
	// ErrDegenerateState is returned when a filter state can't be turned back into a box
	ErrDegenerateState = errors.New("degenerate filter state")
	// ErrSingularInnovation is returned when the innovation covariance can't be solved
	ErrSingularInnovation = errors.New("singular innovation covariance")
	// ErrNonFinite is returned when a computation produced NaN or Inf
	ErrNonFinite = errors.New("non-finite value")
	// ErrInvalidConfig is returned for out-of-range tracker parameters
	ErrInvalidConfig = errors.New("invalid tracker configuration")
	// ErrInvalidCost is returned by the assignment solver for malformed cost matrices
	ErrInvalidCost = errors.New("invalid cost matrix")
)

// FrameErrors collects the recoverable problems of a single frame: dropped
// detections and failed track updates. A frame that reports FrameErrors has
// still been fully processed.
type FrameErrors []error

func (fe FrameErrors) Error() string {
	if len(fe) == 1 {
		return fe[0].Error()
	}
	msgs := make([]string, len(fe))
	for i, err := range fe {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the collected errors to errors.Is and errors.As
func (fe FrameErrors) Unwrap() []error {
	return fe
}

// orNil returns nil for an empty collection so callers can use err != nil.
func (fe FrameErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}
