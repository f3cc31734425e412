package constraints

import (
	"math"
	"slices"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
)

// Operator is the relation of a linear constraint.
type Operator string

const (
	OpEqual        Operator = "="
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
)

func (o Operator) valid() bool {
	switch o {
	case OpEqual, OpGreaterEqual, OpLessEqual:
		return true
	}
	return false
}

// Linear is a linear in-/equality constraint over named continuous
// parameters: sum(coefficients[i] * x[parameters[i]]) {=,>=,<=} rhs.
//
// Internally, "<=" constraints are exported with sign-flipped coefficients
// and right-hand side so that downstream solvers only need to handle "=" and
// ">=". The constraint is immutable after construction.
type Linear struct {
	parameters   []string
	operator     Operator
	coefficients []float64
	rhs          float64
}

// NewLinear creates a linear constraint. A nil coefficient slice defaults to
// equal unit weights.
func NewLinear(parameters []string, operator Operator, coefficients []float64, rhs float64) (*Linear, error) {
	if !operator.valid() {
		return nil, errors.Errorf(errors.ValidationFailed,
			"invalid linear constraint operator %q, must be one of =, >=, <=", operator)
	}
	if len(parameters) == 0 {
		return nil, errors.New(errors.ValidationFailed,
			"a linear constraint needs at least one parameter")
	}
	seen := make(map[string]struct{}, len(parameters))
	for _, name := range parameters {
		if _, dup := seen[name]; dup {
			return nil, errors.Errorf(errors.ValidationFailed,
				"duplicate parameter %q in linear constraint", name)
		}
		seen[name] = struct{}{}
	}

	if coefficients == nil {
		coefficients = make([]float64, len(parameters))
		for i := range coefficients {
			coefficients[i] = 1.0
		}
	}
	if len(coefficients) != len(parameters) {
		return nil, errors.Errorf(errors.ValidationFailed,
			"the coefficients list must have one entry per parameter, got %d coefficients for %d parameters",
			len(coefficients), len(parameters))
	}
	for _, c := range coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, errors.New(errors.ValidationFailed,
				"linear constraint coefficients must be finite")
		}
	}
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return nil, errors.New(errors.ValidationFailed,
			"linear constraint right-hand side must be finite")
	}

	return &Linear{
		parameters:   slices.Clone(parameters),
		operator:     operator,
		coefficients: slices.Clone(coefficients),
		rhs:          rhs,
	}, nil
}

// MustLinear is the panicking variant of NewLinear for literals in tests.
func MustLinear(parameters []string, operator Operator, coefficients []float64, rhs float64) *Linear {
	c, err := NewLinear(parameters, operator, coefficients, rhs)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Linear) Parameters() []string { return slices.Clone(c.parameters) }

func (c *Linear) Coefficients() []float64 { return slices.Clone(c.coefficients) }

func (c *Linear) Operator() Operator { return c.operator }

func (c *Linear) RHS() float64 { return c.rhs }

// IsEquality reports whether the constraint models an equality (assumed
// inequality otherwise).
func (c *Linear) IsEquality() bool { return c.operator == OpEqual }

// multiplier is the internal sign flip applied to coefficients and rhs so
// that only "=" and ">=" survive the export.
func (c *Linear) multiplier() float64 {
	if c.operator == OpLessEqual {
		return -1.0
	}
	return 1.0
}

// ToSolverForm casts the constraint into the solver-neutral triple
// (indices, coefficients, rhs) relative to the given parameter ordering.
// Constrained parameters absent from parameterOrder are dropped silently,
// which supports partial and hybrid spaces. indexOffset shifts all indices,
// used when continuous columns follow discrete ones.
func (c *Linear) ToSolverForm(parameterOrder []string, indexOffset int) (indices []int, coefficients []float64, rhs float64) {
	for i, name := range c.parameters {
		pos := slices.Index(parameterOrder, name)
		if pos < 0 {
			continue
		}
		indices = append(indices, pos+indexOffset)
		coefficients = append(coefficients, c.multiplier()*c.coefficients[i])
	}
	return indices, coefficients, c.multiplier() * c.rhs
}

// WithoutParameters returns a copy of the constraint with the named
// parameters and their coefficients removed. Operator and right-hand side
// are untouched; the order of the remaining entries is preserved.
func (c *Linear) WithoutParameters(names ...string) *Linear {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}

	parameters := make([]string, 0, len(c.parameters))
	coefficients := make([]float64, 0, len(c.coefficients))
	for i, p := range c.parameters {
		if _, gone := drop[p]; gone {
			continue
		}
		parameters = append(parameters, p)
		coefficients = append(coefficients, c.coefficients[i])
	}

	return &Linear{
		parameters:   parameters,
		operator:     c.operator,
		coefficients: coefficients,
		rhs:          c.rhs,
	}
}

// IsSatisfied evaluates the constraint for a point given as a name-to-value
// mapping, within the given tolerance. Parameters missing from the point are
// treated as zero.
func (c *Linear) IsSatisfied(point map[string]float64, tolerance float64) bool {
	var lhs float64
	for i, name := range c.parameters {
		lhs += c.coefficients[i] * point[name]
	}
	switch c.operator {
	case OpEqual:
		return math.Abs(lhs-c.rhs) <= tolerance
	case OpGreaterEqual:
		return lhs >= c.rhs-tolerance
	default:
		return lhs <= c.rhs+tolerance
	}
}
