package params

import (
	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
)

// Activate moves a parameter's bounds away from a near-zero dead zone given
// by thresholds, so that the activated parameter can no longer realize
// values that count as "inactive" under a cardinality constraint.
//
// Parameters whose bounds both lie outside the dead zone are returned
// unchanged. If the adjusted range collapses to a single point, the result
// is a fixed-value parameter rather than an error. Activation fails when
// both bounds fall inside the dead zone, since the activated range would be
// empty.
func Activate(p NumericalContinuousParameter, thresholds Interval) (NumericalContinuousParameter, error) {
	if !thresholds.ContainsZero() {
		return NumericalContinuousParameter{}, errors.WithFields(
			errors.Errorf(errors.ActivationFailed,
				"thresholds must cover zero, got %s", thresholds),
			errors.Fields{"parameter": p.Name()})
	}
	if !p.Bounds().ContainsZero() {
		return NumericalContinuousParameter{}, errors.WithFields(
			errors.Errorf(errors.ActivationFailed,
				"parameter bounds must cover zero, got %s", p.Bounds()),
			errors.Fields{"parameter": p.Name()})
	}

	lower := p.Bounds().Lower()
	upper := p.Bounds().Upper()

	inDeadZone := func(x float64) bool { return thresholds.Contains(x) }

	switch {
	case inDeadZone(upper) && lower < thresholds.Lower():
		// Upper bound in the dead zone: shrink toward the negative side.
		return p.WithBounds(MustInterval(lower, thresholds.Lower())), nil

	case inDeadZone(lower) && upper > thresholds.Upper():
		// Lower bound in the dead zone: shrink toward the positive side.
		return p.WithBounds(MustInterval(thresholds.Upper(), upper)), nil

	case inDeadZone(lower) && inDeadZone(upper):
		return NumericalContinuousParameter{}, errors.WithFields(
			errors.Errorf(errors.ActivationFailed,
				"parameter %q cannot be set active since its bounds %s are entirely contained in the inactive range %s",
				p.Name(), p.Bounds(), thresholds),
			errors.Fields{"parameter": p.Name()})

	default:
		// Both bounds already clear of the dead zone.
		return p, nil
	}
}
