package searchspace

import (
	"slices"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
)

// MaxDiscreteCandidates caps the size of the materialized discrete
// candidate table. The cross product of discrete parameter values grows
// multiplicatively, so an unguarded product can exhaust memory long before
// any recommender touches it.
const MaxDiscreteCandidates = 1_000_000

// SubspaceDiscrete is the discrete part of a search space. Its candidate
// table holds the full cross product of the parameter value lists and is
// built once at construction.
type SubspaceDiscrete struct {
	parameters []params.NumericalDiscreteParameter
	candidates *Table
}

// NewSubspaceDiscrete creates a discrete subspace and materializes its
// candidate table.
func NewSubspaceDiscrete(parameters []params.NumericalDiscreteParameter) (*SubspaceDiscrete, error) {
	seen := make(map[string]struct{}, len(parameters))
	total := 1
	for _, p := range parameters {
		if _, dup := seen[p.Name()]; dup {
			return nil, errors.Errorf(errors.ValidationFailed,
				"duplicate parameter name %q", p.Name())
		}
		seen[p.Name()] = struct{}{}
		total *= len(p.Values())
		if total > MaxDiscreteCandidates {
			return nil, errors.Errorf(errors.IncompatibleSearchSpace,
				"discrete candidate table exceeds %d rows", MaxDiscreteCandidates)
		}
	}

	s := &SubspaceDiscrete{parameters: slices.Clone(parameters)}
	if len(parameters) == 0 {
		return s, nil
	}

	rows := make([][]float64, 0, total)
	row := make([]float64, len(parameters))
	var build func(i int)
	build = func(i int) {
		if i == len(parameters) {
			rows = append(rows, slices.Clone(row))
			return
		}
		for _, v := range parameters[i].Values() {
			row[i] = v
			build(i + 1)
		}
	}
	build(0)

	names := make([]string, len(parameters))
	for i, p := range parameters {
		names[i] = p.Name()
	}
	table, err := NewTable(names, rows)
	if err != nil {
		return nil, err
	}
	s.candidates = table
	return s, nil
}

// IsEmpty reports whether the subspace has no parameters.
func (s *SubspaceDiscrete) IsEmpty() bool { return s == nil || len(s.parameters) == 0 }

// Parameters returns a copy of the ordered parameter list.
func (s *SubspaceDiscrete) Parameters() []params.NumericalDiscreteParameter {
	return slices.Clone(s.parameters)
}

// ParameterNames returns the parameter names in subspace order.
func (s *SubspaceDiscrete) ParameterNames() []string {
	names := make([]string, len(s.parameters))
	for i, p := range s.parameters {
		names[i] = p.Name()
	}
	return names
}

// Candidates returns the materialized cross-product candidate table.
func (s *SubspaceDiscrete) Candidates() *Table {
	if s.IsEmpty() {
		return &Table{}
	}
	return s.candidates
}
