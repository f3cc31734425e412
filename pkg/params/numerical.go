package params

import (
	"sort"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
)

// NumericalContinuousParameter is a named parameter with a continuous range
// of allowed values. A degenerate bounds interval represents a fixed-value
// parameter, which is still a valid continuous parameter.
type NumericalContinuousParameter struct {
	name   string
	bounds Interval
}

// NewContinuous creates a continuous parameter over the given bounds.
func NewContinuous(name string, bounds Interval) (NumericalContinuousParameter, error) {
	if name == "" {
		return NumericalContinuousParameter{}, errors.New(errors.ValidationFailed,
			"parameter name must not be empty")
	}
	return NumericalContinuousParameter{name: name, bounds: bounds}, nil
}

// MustContinuous is the panicking variant of NewContinuous for literals.
func MustContinuous(name string, lower, upper float64) NumericalContinuousParameter {
	p, err := NewContinuous(name, MustInterval(lower, upper))
	if err != nil {
		panic(err)
	}
	return p
}

func (p NumericalContinuousParameter) Name() string     { return p.name }
func (p NumericalContinuousParameter) Bounds() Interval { return p.bounds }

// IsFixed reports whether the parameter admits only a single value.
func (p NumericalContinuousParameter) IsFixed() bool { return p.bounds.IsDegenerate() }

// FixedValue returns the single allowed value of a fixed parameter. The
// result is only meaningful when IsFixed is true.
func (p NumericalContinuousParameter) FixedValue() float64 { return p.bounds.Lower() }

// WithBounds returns a copy of the parameter with replaced bounds.
func (p NumericalContinuousParameter) WithBounds(bounds Interval) NumericalContinuousParameter {
	return NumericalContinuousParameter{name: p.name, bounds: bounds}
}

// IsInRange reports whether the value is admissible for this parameter.
func (p NumericalContinuousParameter) IsInRange(x float64) bool {
	return p.bounds.Contains(x)
}

// NumericalDiscreteParameter is a named parameter with a finite set of
// admissible numeric values.
type NumericalDiscreteParameter struct {
	name   string
	values []float64
}

// NewDiscrete creates a discrete parameter from its admissible values. The
// values are copied, deduplicated and sorted ascending.
func NewDiscrete(name string, values []float64) (NumericalDiscreteParameter, error) {
	if name == "" {
		return NumericalDiscreteParameter{}, errors.New(errors.ValidationFailed,
			"parameter name must not be empty")
	}
	if len(values) == 0 {
		return NumericalDiscreteParameter{}, errors.Errorf(errors.ValidationFailed,
			"discrete parameter %q needs at least one value", name)
	}

	seen := make(map[float64]struct{}, len(values))
	unique := make([]float64, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		unique = append(unique, v)
	}
	sort.Float64s(unique)

	return NumericalDiscreteParameter{name: name, values: unique}, nil
}

// MustDiscrete is the panicking variant of NewDiscrete for literals.
func MustDiscrete(name string, values ...float64) NumericalDiscreteParameter {
	p, err := NewDiscrete(name, values)
	if err != nil {
		panic(err)
	}
	return p
}

func (p NumericalDiscreteParameter) Name() string { return p.name }

// Values returns a copy of the admissible values in ascending order.
func (p NumericalDiscreteParameter) Values() []float64 {
	out := make([]float64, len(p.values))
	copy(out, p.values)
	return out
}

// IsInRange reports whether the value is one of the admissible values.
func (p NumericalDiscreteParameter) IsInRange(x float64) bool {
	i := sort.SearchFloat64s(p.values, x)
	return i < len(p.values) && p.values[i] == x
}
