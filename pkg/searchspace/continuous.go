package searchspace

import (
	"iter"
	"math/rand"
	"slices"

	"github.com/XiaoConstantine/baydesign-go/pkg/constraints"
	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/optim"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
)

// SubspaceContinuous is the continuous part of a search space: an ordered
// set of continuous parameters plus linear and cardinality constraints over
// them. The recommenders only read subspaces; reductions produce derived
// copies scoped to one optimization attempt.
type SubspaceContinuous struct {
	parameters  []params.NumericalContinuousParameter
	linEq       []*constraints.Linear
	linIneq     []*constraints.Linear
	cardinality []*constraints.Cardinality
}

// NewSubspaceContinuous creates a continuous subspace. Linear constraints
// are split into equalities and inequalities internally. Every constrained
// parameter name must belong to the subspace, and cardinality constraints
// must not overlap, since overlapping groups would contend over the same
// inactive assignments.
func NewSubspaceContinuous(
	parameters []params.NumericalContinuousParameter,
	linear []*constraints.Linear,
	cardinality []*constraints.Cardinality,
) (*SubspaceContinuous, error) {
	names := make(map[string]struct{}, len(parameters))
	for _, p := range parameters {
		if _, dup := names[p.Name()]; dup {
			return nil, errors.Errorf(errors.ValidationFailed,
				"duplicate parameter name %q", p.Name())
		}
		names[p.Name()] = struct{}{}
	}

	s := &SubspaceContinuous{parameters: slices.Clone(parameters)}

	for _, c := range linear {
		for _, name := range c.Parameters() {
			if _, ok := names[name]; !ok {
				return nil, errors.Errorf(errors.ValidationFailed,
					"linear constraint references unknown parameter %q", name)
			}
		}
		if c.IsEquality() {
			s.linEq = append(s.linEq, c)
		} else {
			s.linIneq = append(s.linIneq, c)
		}
	}

	governed := make(map[string]struct{})
	for _, c := range cardinality {
		for _, name := range c.Parameters() {
			if _, ok := names[name]; !ok {
				return nil, errors.Errorf(errors.ValidationFailed,
					"cardinality constraint references unknown parameter %q", name)
			}
			if _, clash := governed[name]; clash {
				return nil, errors.Errorf(errors.ValidationFailed,
					"parameter %q appears in more than one cardinality constraint", name)
			}
			governed[name] = struct{}{}
		}
	}
	s.cardinality = slices.Clone(cardinality)

	return s, nil
}

// IsEmpty reports whether the subspace has no parameters.
func (s *SubspaceContinuous) IsEmpty() bool { return s == nil || len(s.parameters) == 0 }

// Parameters returns a copy of the ordered parameter list.
func (s *SubspaceContinuous) Parameters() []params.NumericalContinuousParameter {
	return slices.Clone(s.parameters)
}

// ParameterNames returns the parameter names in subspace order.
func (s *SubspaceContinuous) ParameterNames() []string {
	names := make([]string, len(s.parameters))
	for i, p := range s.parameters {
		names[i] = p.Name()
	}
	return names
}

// Bounds returns the box bounds in parameter order.
func (s *SubspaceContinuous) Bounds() []params.Interval {
	bounds := make([]params.Interval, len(s.parameters))
	for i, p := range s.parameters {
		bounds[i] = p.Bounds()
	}
	return bounds
}

func (s *SubspaceContinuous) LinearEqualities() []*constraints.Linear {
	return slices.Clone(s.linEq)
}

func (s *SubspaceContinuous) LinearInequalities() []*constraints.Linear {
	return slices.Clone(s.linIneq)
}

func (s *SubspaceContinuous) CardinalityConstraints() []*constraints.Cardinality {
	return slices.Clone(s.cardinality)
}

// HasCardinalityConstraints reports whether any cardinality constraint is
// present.
func (s *SubspaceContinuous) HasCardinalityConstraints() bool {
	return len(s.cardinality) > 0
}

// ExportEqualities casts the equality constraints into solver triples over
// the subspace's parameter ordering.
func (s *SubspaceContinuous) ExportEqualities(indexOffset int) []optim.LinearConstraint {
	return exportLinear(s.linEq, s.ParameterNames(), indexOffset)
}

// ExportInequalities casts the inequality constraints into solver triples.
func (s *SubspaceContinuous) ExportInequalities(indexOffset int) []optim.LinearConstraint {
	return exportLinear(s.linIneq, s.ParameterNames(), indexOffset)
}

func exportLinear(cs []*constraints.Linear, order []string, offset int) []optim.LinearConstraint {
	out := make([]optim.LinearConstraint, 0, len(cs))
	for _, c := range cs {
		indices, coeffs, rhs := c.ToSolverForm(order, offset)
		if len(indices) == 0 {
			// All referenced parameters were dropped from this view.
			continue
		}
		out = append(out, optim.LinearConstraint{Indices: indices, Coefficients: coeffs, RHS: rhs})
	}
	return out
}

// TotalInactiveConfigurations is the number of distinct inactive-parameter
// configurations across all cardinality constraints (the product of the
// per-constraint counts).
func (s *SubspaceContinuous) TotalInactiveConfigurations() int {
	if len(s.cardinality) == 0 {
		return 0
	}
	total := 1
	for _, c := range s.cardinality {
		total *= c.InactiveCombinationCount()
	}
	return total
}

// InactiveConfigurations enumerates every inactive-parameter configuration:
// one subset per cardinality constraint, unioned. The sequence is lazy,
// deterministic and restartable.
func (s *SubspaceContinuous) InactiveConfigurations() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		var rec func(i int, acc []string) bool
		rec = func(i int, acc []string) bool {
			if i == len(s.cardinality) {
				return yield(slices.Clone(acc))
			}
			for combo := range s.cardinality[i].InactiveCombinations() {
				next := append(slices.Clone(acc), combo...)
				if !rec(i+1, next) {
					return false
				}
			}
			return true
		}
		rec(0, nil)
	}
}

// SampleInactiveConfiguration draws one inactive-parameter configuration by
// sampling each cardinality constraint independently.
func (s *SubspaceContinuous) SampleInactiveConfiguration(rng *rand.Rand) []string {
	var inactive []string
	for _, c := range s.cardinality {
		inactive = append(inactive, c.SampleInactiveSets(rng, 1)[0]...)
	}
	return inactive
}

// EnsureNonzeroParameters returns a derived subspace for one
// inactive-parameter configuration: every still-active parameter governed
// by a cardinality constraint has its bounds activated away from the
// constraint's near-zero threshold, linear constraints are reduced by the
// inactive names, and the cardinality constraints themselves are dropped
// (they are realized through the fixed-to-zero features instead).
//
// The inactive parameters stay in the parameter list with their original
// bounds so that parameter indices remain stable; callers pin them through
// the optimizer's fixed-feature map.
func (s *SubspaceContinuous) EnsureNonzeroParameters(inactive []string) (*SubspaceContinuous, error) {
	inactiveSet := make(map[string]struct{}, len(inactive))
	for _, name := range inactive {
		inactiveSet[name] = struct{}{}
	}

	adjusted := slices.Clone(s.parameters)
	for i, p := range adjusted {
		if _, isInactive := inactiveSet[p.Name()]; isInactive {
			continue
		}
		for _, c := range s.cardinality {
			if !c.Governs(p.Name()) {
				continue
			}
			thresholds, err := c.Threshold(p)
			if err != nil {
				return nil, err
			}
			activated, err := params.Activate(p, thresholds)
			if err != nil {
				return nil, err
			}
			adjusted[i] = activated
			break
		}
	}

	reduced := &SubspaceContinuous{parameters: adjusted}
	for _, c := range s.linEq {
		reduced.linEq = append(reduced.linEq, c.WithoutParameters(inactive...))
	}
	for _, c := range s.linIneq {
		reduced.linIneq = append(reduced.linIneq, c.WithoutParameters(inactive...))
	}
	return reduced, nil
}

// FixedZeroFeatures builds the optimizer fixed-feature map pinning every
// inactive parameter to zero. indexOffset shifts the parameter indices.
func (s *SubspaceContinuous) FixedZeroFeatures(inactive []string, indexOffset int) map[int]float64 {
	names := s.ParameterNames()
	fixed := make(map[int]float64, len(inactive))
	for _, name := range inactive {
		if idx := slices.Index(names, name); idx >= 0 {
			fixed[idx+indexOffset] = 0.0
		}
	}
	return fixed
}

// SampleRandom draws n random points satisfying all constraints of the
// subspace. Cardinality constraints are honored by sampling an inactive
// configuration per point; linear constraints by projection and rejection.
func (s *SubspaceContinuous) SampleRandom(rng *rand.Rand, n int) (*Table, error) {
	if s.IsEmpty() {
		return nil, errors.New(errors.IncompatibleSearchSpace,
			"cannot sample from an empty continuous subspace")
	}

	rows := make([][]float64, 0, n)
	for len(rows) < n {
		var inactive []string
		if s.HasCardinalityConstraints() {
			inactive = s.SampleInactiveConfiguration(rng)
		}

		view, err := s.EnsureNonzeroParameters(inactive)
		if err != nil {
			return nil, err
		}

		points, err := optim.SampleFeasible(
			rng,
			view.Bounds(),
			view.ExportEqualities(0),
			view.ExportInequalities(0),
			s.FixedZeroFeatures(inactive, 0),
			1,
		)
		if err != nil {
			return nil, err
		}
		rows = append(rows, points[0])
	}

	return NewTable(s.ParameterNames(), rows)
}
