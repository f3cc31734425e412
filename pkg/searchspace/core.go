package searchspace

import (
	"github.com/XiaoConstantine/baydesign-go/pkg/constraints"
	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
)

// Type classifies a search space by which subspaces it populates.
type Type string

const (
	TypeDiscrete   Type = "discrete"
	TypeContinuous Type = "continuous"
	TypeHybrid     Type = "hybrid"
)

// SearchSpace combines an optional discrete and an optional continuous
// subspace. At least one must be non-empty.
type SearchSpace struct {
	Discrete   *SubspaceDiscrete
	Continuous *SubspaceContinuous
}

// New assembles a search space from its subspaces. Either may be nil.
func New(discrete *SubspaceDiscrete, continuous *SubspaceContinuous) (*SearchSpace, error) {
	if discrete.IsEmpty() && continuous.IsEmpty() {
		return nil, errors.New(errors.ValidationFailed,
			"search space must contain at least one parameter")
	}
	return &SearchSpace{Discrete: discrete, Continuous: continuous}, nil
}

// NewContinuous builds a purely continuous search space.
func NewContinuous(
	parameters []params.NumericalContinuousParameter,
	linear []*constraints.Linear,
	cardinality []*constraints.Cardinality,
) (*SearchSpace, error) {
	sub, err := NewSubspaceContinuous(parameters, linear, cardinality)
	if err != nil {
		return nil, err
	}
	return New(nil, sub)
}

// NewDiscrete builds a purely discrete search space.
func NewDiscrete(parameters []params.NumericalDiscreteParameter) (*SearchSpace, error) {
	sub, err := NewSubspaceDiscrete(parameters)
	if err != nil {
		return nil, err
	}
	return New(sub, nil)
}

// Type reports whether the space is discrete, continuous or hybrid.
func (s *SearchSpace) Type() Type {
	switch {
	case s.Discrete.IsEmpty():
		return TypeContinuous
	case s.Continuous.IsEmpty():
		return TypeDiscrete
	default:
		return TypeHybrid
	}
}

// ParameterNames returns all parameter names, discrete first, matching the
// column order recommenders use for joint points.
func (s *SearchSpace) ParameterNames() []string {
	var names []string
	if !s.Discrete.IsEmpty() {
		names = append(names, s.Discrete.ParameterNames()...)
	}
	if !s.Continuous.IsEmpty() {
		names = append(names, s.Continuous.ParameterNames()...)
	}
	return names
}

// NumParameters is the total parameter count across both subspaces.
func (s *SearchSpace) NumParameters() int {
	n := 0
	if !s.Discrete.IsEmpty() {
		n += len(s.Discrete.parameters)
	}
	if !s.Continuous.IsEmpty() {
		n += len(s.Continuous.parameters)
	}
	return n
}
