// Package optim defines the contract between the recommenders and the
// underlying continuous optimizer, plus a default sampling-based
// implementation. The recommendation engine never depends on a specific
// numeric library: any solver that accepts bounds, linear constraint
// triples and fixed features can be plugged in through the
// ContinuousOptimizer interface.
package optim

import (
	"context"

	"github.com/XiaoConstantine/baydesign-go/pkg/params"
)

// Objective maps a batch of candidate points (q rows of equal dimension) to
// a scalar utility. Larger is better.
type Objective func(batch [][]float64) (float64, error)

// LinearConstraint is the solver-neutral linear constraint triple:
// sum(Coefficients[j] * x[Indices[j]]) {== | >=} RHS. Whether it is an
// equality or inequality is decided by which Problem field carries it.
type LinearConstraint struct {
	Indices      []int
	Coefficients []float64
	RHS          float64
}

// Evaluate computes the left-hand side for a full-dimensional point.
func (c LinearConstraint) Evaluate(x []float64) float64 {
	var lhs float64
	for j, idx := range c.Indices {
		lhs += c.Coefficients[j] * x[idx]
	}
	return lhs
}

// Problem is one constrained continuous optimization task.
type Problem struct {
	Objective Objective

	// Bounds give the box constraints, one interval per dimension.
	Bounds []params.Interval

	// Q is the number of points to return jointly.
	Q int

	// Equality and Inequality carry the exported linear constraints.
	Equality   []LinearConstraint
	Inequality []LinearConstraint

	// FixedFeatures pins dimensions to constant values during the solve.
	FixedFeatures map[int]float64
}

// ContinuousOptimizer is the external solver contract. Optimize returns the
// best batch found and its objective value.
type ContinuousOptimizer interface {
	Optimize(ctx context.Context, problem Problem) (points [][]float64, value float64, err error)
}
