package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/baydesign-go/pkg/constraints"
	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
	"github.com/XiaoConstantine/baydesign-go/pkg/searchspace"
)

// Experiment is the declarative description of one design problem:
// parameters, constraints and any measurements already taken.
type Experiment struct {
	Parameters  []ParameterSpec   `yaml:"parameters" validate:"required,min=1,dive"`
	Constraints ConstraintsSpec   `yaml:"constraints,omitempty"`
	Measurement []MeasurementSpec `yaml:"measurements,omitempty" validate:"dive"`
}

// ParameterSpec declares one parameter. Continuous parameters carry bounds,
// discrete ones a value list.
type ParameterSpec struct {
	Name   string    `yaml:"name" validate:"required"`
	Type   string    `yaml:"type" validate:"required,oneof=continuous discrete"`
	Lower  float64   `yaml:"lower,omitempty"`
	Upper  float64   `yaml:"upper,omitempty"`
	Values []float64 `yaml:"values,omitempty"`
}

// ConstraintsSpec groups the constraint declarations.
type ConstraintsSpec struct {
	Linear      []LinearSpec      `yaml:"linear,omitempty" validate:"dive"`
	Cardinality []CardinalitySpec `yaml:"cardinality,omitempty" validate:"dive"`
}

// LinearSpec declares one linear constraint. Omitted coefficients default
// to one.
type LinearSpec struct {
	Parameters   []string  `yaml:"parameters" validate:"required,min=1"`
	Operator     string    `yaml:"operator" validate:"required,oneof== >= <="`
	Coefficients []float64 `yaml:"coefficients,omitempty"`
	RHS          float64   `yaml:"rhs"`
}

// CardinalitySpec declares one cardinality constraint.
type CardinalitySpec struct {
	Parameters     []string `yaml:"parameters" validate:"required,min=1"`
	MinCardinality int      `yaml:"min" validate:"min=0"`
	MaxCardinality int      `yaml:"max" validate:"min=0"`
}

// MeasurementSpec is one observed point.
type MeasurementSpec struct {
	Parameters map[string]float64 `yaml:"parameters" validate:"required"`
	Target     float64            `yaml:"target"`
}

// LoadExperiment reads and validates an experiment file.
func LoadExperiment(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ResourceNotFound, "failed to read experiment file")
	}

	var exp Experiment
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to parse experiment file")
	}
	if err := validator.New().Struct(&exp); err != nil {
		return nil, errors.Wrap(err, errors.ValidationFailed, "invalid experiment")
	}
	return &exp, nil
}

// SearchSpace materializes the declared parameters and constraints.
func (e *Experiment) SearchSpace() (*searchspace.SearchSpace, error) {
	var continuous []params.NumericalContinuousParameter
	var discrete []params.NumericalDiscreteParameter
	for _, spec := range e.Parameters {
		switch spec.Type {
		case "continuous":
			bounds, err := params.NewInterval(spec.Lower, spec.Upper)
			if err != nil {
				return nil, err
			}
			p, err := params.NewContinuous(spec.Name, bounds)
			if err != nil {
				return nil, err
			}
			continuous = append(continuous, p)
		case "discrete":
			p, err := params.NewDiscrete(spec.Name, spec.Values)
			if err != nil {
				return nil, err
			}
			discrete = append(discrete, p)
		}
	}

	var linear []*constraints.Linear
	for _, spec := range e.Constraints.Linear {
		c, err := constraints.NewLinear(spec.Parameters, constraints.Operator(spec.Operator), spec.Coefficients, spec.RHS)
		if err != nil {
			return nil, err
		}
		linear = append(linear, c)
	}

	var cardinality []*constraints.Cardinality
	for _, spec := range e.Constraints.Cardinality {
		c, err := constraints.NewCardinality(spec.Parameters, spec.MinCardinality, spec.MaxCardinality)
		if err != nil {
			return nil, err
		}
		cardinality = append(cardinality, c)
	}

	var discreteSub *searchspace.SubspaceDiscrete
	if len(discrete) > 0 {
		sub, err := searchspace.NewSubspaceDiscrete(discrete)
		if err != nil {
			return nil, err
		}
		discreteSub = sub
	}
	var continuousSub *searchspace.SubspaceContinuous
	if len(continuous) > 0 {
		sub, err := searchspace.NewSubspaceContinuous(continuous, linear, cardinality)
		if err != nil {
			return nil, err
		}
		continuousSub = sub
	} else if len(linear) > 0 || len(cardinality) > 0 {
		return nil, errors.New(errors.ValidationFailed,
			"constraints require continuous parameters")
	}

	return searchspace.New(discreteSub, continuousSub)
}
