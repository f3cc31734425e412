package constraints

import (
	"iter"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/stat/combin"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
)

// DefaultRelativeThreshold is the default fraction of a parameter's bounds
// that counts as "effectively zero" for cardinality counting.
const DefaultRelativeThreshold = 1e-2

// Cardinality bounds the number of nonzero ("active") parameters within a
// named parameter subset. It is a non-convex combinatorial constraint: the
// recommender handles it by enumerating or sampling sets of parameters that
// are fixed to zero and solving the remaining continuous problem per set.
//
// The constraint is immutable; parameter names are kept in sorted order,
// which fixes the enumeration order of inactive combinations.
type Cardinality struct {
	parameters        []string
	minCardinality    int
	maxCardinality    int
	relativeThreshold float64
}

// CardinalityOption customizes constraint construction.
type CardinalityOption func(*Cardinality)

// WithRelativeThreshold overrides the default near-zero threshold fraction.
func WithRelativeThreshold(t float64) CardinalityOption {
	return func(c *Cardinality) { c.relativeThreshold = t }
}

// NewCardinality creates a cardinality constraint requiring that between
// minCardinality and maxCardinality of the given parameters are nonzero.
func NewCardinality(parameters []string, minCardinality, maxCardinality int, opts ...CardinalityOption) (*Cardinality, error) {
	if len(parameters) == 0 {
		return nil, errors.New(errors.ValidationFailed,
			"a cardinality constraint needs at least one parameter")
	}
	sorted := slices.Clone(parameters)
	slices.Sort(sorted)
	if dup := slices.Compact(slices.Clone(sorted)); len(dup) != len(sorted) {
		return nil, errors.New(errors.ValidationFailed,
			"cardinality constraint parameters must be distinct")
	}
	if minCardinality < 0 || minCardinality > maxCardinality || maxCardinality > len(sorted) {
		return nil, errors.Errorf(errors.ValidationFailed,
			"cardinality bounds must satisfy 0 <= min <= max <= %d, got min=%d max=%d",
			len(sorted), minCardinality, maxCardinality)
	}

	c := &Cardinality{
		parameters:        sorted,
		minCardinality:    minCardinality,
		maxCardinality:    maxCardinality,
		relativeThreshold: DefaultRelativeThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.relativeThreshold <= 0 || c.relativeThreshold >= 1 {
		return nil, errors.Errorf(errors.ValidationFailed,
			"relative threshold must lie in (0, 1), got %v", c.relativeThreshold)
	}
	return c, nil
}

// MustCardinality is the panicking variant of NewCardinality for literals.
func MustCardinality(parameters []string, minCardinality, maxCardinality int, opts ...CardinalityOption) *Cardinality {
	c, err := NewCardinality(parameters, minCardinality, maxCardinality, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cardinality) Parameters() []string { return slices.Clone(c.parameters) }

func (c *Cardinality) MinCardinality() int { return c.minCardinality }

func (c *Cardinality) MaxCardinality() int { return c.maxCardinality }

func (c *Cardinality) RelativeThreshold() float64 { return c.relativeThreshold }

// Governs reports whether the named parameter is part of the constraint.
func (c *Cardinality) Governs(name string) bool {
	_, found := slices.BinarySearch(c.parameters, name)
	return found
}

// InactiveSetSizes returns the valid range of inactive-parameter counts.
func (c *Cardinality) InactiveSetSizes() (min, max int) {
	n := len(c.parameters)
	return n - c.maxCardinality, n - c.minCardinality
}

// InactiveCombinationCount is the number of distinct inactive-parameter
// subsets admitted by the constraint.
func (c *Cardinality) InactiveCombinationCount() int {
	n := len(c.parameters)
	minSize, maxSize := c.InactiveSetSizes()
	total := 0
	for k := minSize; k <= maxSize; k++ {
		total += combin.Binomial(n, k)
	}
	return total
}

// InactiveCombinations returns a lazy, restartable sequence over every
// subset of the constrained parameters whose size falls in the valid
// inactive-count range. Subsets are produced in lexicographic order of the
// sorted parameter names, smallest size first. The sequence is a pure
// function of the constraint state; each range starts fresh.
func (c *Cardinality) InactiveCombinations() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		n := len(c.parameters)
		minSize, maxSize := c.InactiveSetSizes()
		for k := minSize; k <= maxSize; k++ {
			if k == 0 {
				if !yield([]string{}) {
					return
				}
				continue
			}
			gen := combin.NewCombinationGenerator(n, k)
			for gen.Next() {
				idxs := gen.Combination(nil)
				names := make([]string, len(idxs))
				for i, idx := range idxs {
					names[i] = c.parameters[idx]
				}
				if !yield(names) {
					return
				}
			}
		}
	}
}

// SampleInactiveSets draws batchSize inactive-parameter sets. The draw is
// two-staged: first an active count k is drawn with probability proportional
// to C(n, n-k), so that each admissible subset carries equal prior mass
// across size classes; then n-k parameters are drawn uniformly without
// replacement.
func (c *Cardinality) SampleInactiveSets(rng *rand.Rand, batchSize int) [][]string {
	n := len(c.parameters)

	// One weight per admissible active count.
	weights := make([]float64, c.maxCardinality-c.minCardinality+1)
	var totalWeight float64
	for i := range weights {
		weights[i] = float64(combin.Binomial(n, c.minCardinality+i))
		totalWeight += weights[i]
	}

	sets := make([][]string, batchSize)
	for b := range sets {
		// Stage one: weighted draw of the active count.
		u := rng.Float64() * totalWeight
		active := c.maxCardinality
		for i, w := range weights {
			if u < w {
				active = c.minCardinality + i
				break
			}
			u -= w
		}

		// Stage two: uniform draw of the inactive parameters.
		nInactive := n - active
		perm := rng.Perm(n)[:nInactive]
		names := make([]string, nInactive)
		for i, idx := range perm {
			names[i] = c.parameters[idx]
		}
		slices.Sort(names)
		sets[b] = names
	}
	return sets
}

// Threshold returns the near-zero interval of a parameter under this
// constraint: the parameter bounds scaled by the relative threshold,
// order-corrected so the result is a valid interval containing zero.
func (c *Cardinality) Threshold(p params.NumericalContinuousParameter) (params.Interval, error) {
	if !c.Governs(p.Name()) {
		return params.Interval{}, errors.Errorf(errors.InvalidInput,
			"parameter %q cannot be found in the constraint's parameter list %v",
			p.Name(), c.parameters)
	}

	lo := c.relativeThreshold * p.Bounds().Lower()
	hi := c.relativeThreshold * p.Bounds().Upper()
	if lo > hi {
		lo, hi = hi, lo
	}
	return params.NewInterval(lo, hi)
}
