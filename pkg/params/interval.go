package params

import (
	"fmt"
	"math"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
)

// Interval is an immutable closed numeric range. Construct it via
// NewInterval; the zero value is the degenerate interval [0, 0].
type Interval struct {
	lower float64
	upper float64
}

// NewInterval creates an interval, validating that the bounds are finite
// and ordered.
func NewInterval(lower, upper float64) (Interval, error) {
	if math.IsNaN(lower) || math.IsNaN(upper) ||
		math.IsInf(lower, 0) || math.IsInf(upper, 0) {
		return Interval{}, errors.Errorf(errors.ValidationFailed,
			"interval bounds must be finite, got [%v, %v]", lower, upper)
	}
	if lower > upper {
		return Interval{}, errors.Errorf(errors.ValidationFailed,
			"interval lower bound %v exceeds upper bound %v", lower, upper)
	}
	return Interval{lower: lower, upper: upper}, nil
}

// MustInterval is a constructor for intervals known to be valid, typically
// literals in tests and defaults. It panics on invalid bounds.
func MustInterval(lower, upper float64) Interval {
	iv, err := NewInterval(lower, upper)
	if err != nil {
		panic(err)
	}
	return iv
}

func (i Interval) Lower() float64 { return i.lower }
func (i Interval) Upper() float64 { return i.upper }

// IsDegenerate reports whether the interval contains a single point.
func (i Interval) IsDegenerate() bool { return i.lower == i.upper }

// Contains reports whether x lies within the closed interval.
func (i Interval) Contains(x float64) bool {
	return x >= i.lower && x <= i.upper
}

// ContainsZero reports whether the interval straddles (or touches) zero.
func (i Interval) ContainsZero() bool { return i.Contains(0) }

// Width returns the length of the interval.
func (i Interval) Width() float64 { return i.upper - i.lower }

// Clamp returns x restricted to the interval.
func (i Interval) Clamp(x float64) float64 {
	if x < i.lower {
		return i.lower
	}
	if x > i.upper {
		return i.upper
	}
	return x
}

func (i Interval) String() string {
	return fmt.Sprintf("[%g, %g]", i.lower, i.upper)
}
