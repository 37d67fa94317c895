package mot

import (
	"image"
	"math"

	"github.com/pkg/errors"
)

// Rectangle is an axis-aligned box: top-left corner plus size, in pixels.
type Rectangle struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func NewRect(x, y, width, height float64) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

func NewRectFrom(rect image.Rectangle) Rectangle {
	return Rectangle{
		X:      float64(rect.Min.X),
		Y:      float64(rect.Min.Y),
		Width:  float64(rect.Dx()),
		Height: float64(rect.Dy()),
	}
}

// Corners returns the box as (x1, y1, x2, y2).
func (r Rectangle) Corners() (float64, float64, float64, float64) {
	return r.X, r.Y, r.X + r.Width, r.Y + r.Height
}

func (r Rectangle) Area() float64 {
	return r.Width * r.Height
}

func (r Rectangle) Center() Point {
	return Point{
		X: r.X + r.Width/2.0,
		Y: r.Y + r.Height/2.0,
	}
}

// Validate rejects boxes with non-finite coordinates or non-positive size.
func (r Rectangle) Validate() error {
	for _, v := range [4]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrDegenerateBox, "non-finite coordinate in %+v", r)
		}
	}
	if r.Width <= 0 || r.Height <= 0 {
		return errors.Wrapf(ErrDegenerateBox, "size %gx%g", r.Width, r.Height)
	}
	// Area and aspect ratio feed the filter, so they must be usable too
	area, ratio := r.Width*r.Height, r.Width/r.Height
	if math.IsInf(area, 0) || math.IsInf(ratio, 0) || area <= 0 || ratio <= 0 {
		return errors.Wrapf(ErrDegenerateBox, "size %gx%g gives area %g, aspect ratio %g", r.Width, r.Height, area, ratio)
	}
	return nil
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Hypot(p1.X-p2.X, p1.Y-p2.Y)
}

// BoxToMeasurement converts a box to [cx, cy, s, r] where s is the area and
// r is width/height.
func BoxToMeasurement(r Rectangle) (Vec4, error) {
	if err := r.Validate(); err != nil {
		return Vec4{}, err
	}
	return Vec4{
		r.X + r.Width/2.0,
		r.Y + r.Height/2.0,
		r.Width * r.Height,
		r.Width / r.Height,
	}, nil
}

// StateToBox converts [cx, cy, s, r, ...] back to a box. Area and aspect ratio
// must both be positive.
func StateToBox(x Vec7) (Rectangle, error) {
	s, ratio := x[2], x[3]
	if !x.IsFinite() {
		return Rectangle{}, errors.Wrap(ErrNonFinite, "state")
	}
	if s <= 0 || ratio <= 0 {
		return Rectangle{}, errors.Wrapf(ErrDegenerateState, "area %g, aspect ratio %g", s, ratio)
	}
	width := math.Sqrt(s * ratio)
	height := s / width
	return Rectangle{
		X:      x[0] - width/2.0,
		Y:      x[1] - height/2.0,
		Width:  width,
		Height: height,
	}, nil
}
