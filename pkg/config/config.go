// Package config declares the file-based configuration surface of the
// engine: campaign, recommender, optimizer and surrogate settings loadable
// from YAML with struct-tag validation.
package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
)

// Config is the root configuration structure.
type Config struct {
	// Campaign holds campaign-level settings.
	Campaign CampaignConfig `yaml:"campaign,omitempty" validate:"omitempty"`

	// Recommender holds constrained-recommender settings.
	Recommender RecommenderConfig `yaml:"recommender,omitempty" validate:"omitempty"`

	// Optimizer holds continuous-optimizer settings.
	Optimizer OptimizerConfig `yaml:"optimizer,omitempty" validate:"omitempty"`

	// Surrogate holds surrogate-model settings.
	Surrogate SurrogateConfig `yaml:"surrogate,omitempty" validate:"omitempty"`
}

// CampaignConfig covers the campaign loop.
type CampaignConfig struct {
	// Seed drives all random draws of the campaign.
	Seed int64 `yaml:"seed" validate:"min=0"`

	// BatchSize is the default recommendation batch size.
	BatchSize int `yaml:"batch_size" validate:"min=1"`

	// MonteCarloSamples is the posterior sample count for batch
	// acquisition estimates.
	MonteCarloSamples int `yaml:"monte_carlo_samples" validate:"min=0"`
}

// RecommenderConfig covers the constrained recommender.
type RecommenderConfig struct {
	// MaxEnumeratedConfigurations bounds the exhaustive sweep over
	// inactive-parameter configurations.
	MaxEnumeratedConfigurations int `yaml:"max_enumerated_configurations" validate:"min=0"`

	// SamplingPercentage thins discrete candidates in hybrid spaces.
	SamplingPercentage float64 `yaml:"sampling_percentage" validate:"min=0,max=1"`

	// MaxGoroutines bounds parallel subproblem solves.
	MaxGoroutines int `yaml:"max_goroutines" validate:"min=0"`
}

// OptimizerConfig covers the random-restart optimizer.
type OptimizerConfig struct {
	// NumCandidates is the number of feasible batches drawn per solve.
	NumCandidates int `yaml:"num_candidates" validate:"min=0"`

	// MaxGoroutines bounds parallel batch scoring.
	MaxGoroutines int `yaml:"max_goroutines" validate:"min=0"`
}

// SurrogateConfig covers the Gaussian process surrogate.
type SurrogateConfig struct {
	// LengthScale is the RBF kernel width.
	LengthScale float64 `yaml:"length_scale" validate:"min=0"`

	// NoiseVariance is added to the kernel diagonal.
	NoiseVariance float64 `yaml:"noise_variance" validate:"min=0"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Campaign: CampaignConfig{
			Seed:              1,
			BatchSize:         1,
			MonteCarloSamples: 128,
		},
		Recommender: RecommenderConfig{
			MaxEnumeratedConfigurations: 10,
			SamplingPercentage:          1.0,
			MaxGoroutines:               8,
		},
		Optimizer: OptimizerConfig{
			NumCandidates: 64,
			MaxGoroutines: 8,
		},
		Surrogate: SurrogateConfig{
			LengthScale:   1.0,
			NoiseVariance: 1e-6,
		},
	}
}

// Load reads a YAML configuration file over the defaults and validates the
// result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ResourceNotFound, "failed to read config file")
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, errors.InvalidInput, "failed to parse config file")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct-tag constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "invalid configuration")
	}
	return nil
}
