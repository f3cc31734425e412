package optim

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
	"github.com/XiaoConstantine/baydesign-go/pkg/params"
)

// FeasibilityTolerance is the default tolerance used when checking linear
// constraint satisfaction of sampled points.
const FeasibilityTolerance = 1e-6

// Satisfies reports whether x fulfills all given constraints within tol.
func Satisfies(x []float64, equality, inequality []LinearConstraint, tol float64) bool {
	for _, c := range equality {
		if math.Abs(c.Evaluate(x)-c.RHS) > tol {
			return false
		}
	}
	for _, c := range inequality {
		if c.Evaluate(x) < c.RHS-tol {
			return false
		}
	}
	return true
}

// SampleFeasible draws n points satisfying bounds, fixed features and linear
// constraints. Points are produced by uniform box sampling followed by
// alternating projection onto the equality constraints and the box, with
// rejection on the inequalities. Fails when no feasible point is found
// within the retry budget.
func SampleFeasible(
	rng *rand.Rand,
	bounds []params.Interval,
	equality, inequality []LinearConstraint,
	fixed map[int]float64,
	n int,
) ([][]float64, error) {
	const (
		maxDraws       = 256
		projectionIter = 64
	)

	points := make([][]float64, 0, n)
	for len(points) < n {
		var found bool
		for attempt := 0; attempt < maxDraws; attempt++ {
			x := drawBox(rng, bounds, fixed)
			projectAndClip(x, bounds, equality, fixed, projectionIter)
			if Satisfies(x, equality, inequality, FeasibilityTolerance) {
				points = append(points, x)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.WithFields(
				errors.New(errors.OptimizationFailed,
					"could not sample a feasible point within the retry budget"),
				errors.Fields{"dimensions": len(bounds), "fixed": len(fixed)})
		}
	}
	return points, nil
}

// drawBox samples one point uniformly within bounds, honoring fixed
// features.
func drawBox(rng *rand.Rand, bounds []params.Interval, fixed map[int]float64) []float64 {
	x := make([]float64, len(bounds))
	for i, b := range bounds {
		if v, pinned := fixed[i]; pinned {
			x[i] = v
			continue
		}
		x[i] = b.Lower() + rng.Float64()*b.Width()
	}
	return x
}

// projectAndClip alternates between least-squares projection onto the
// equality hyperplanes and clipping to the box. Fixed dimensions never
// move; their contribution is folded into the constraint right-hand sides.
func projectAndClip(x []float64, bounds []params.Interval, equality []LinearConstraint, fixed map[int]float64, iterations int) {
	if len(equality) == 0 {
		clip(x, bounds, fixed)
		return
	}

	m := len(equality)
	d := len(x)

	// Constraint matrix over free dimensions only.
	a := mat.NewDense(m, d, nil)
	b := make([]float64, m)
	for i, c := range equality {
		b[i] = c.RHS
		for j, idx := range c.Indices {
			if v, pinned := fixed[idx]; pinned {
				b[i] -= c.Coefficients[j] * v
				continue
			}
			a.Set(i, idx, c.Coefficients[j])
		}
	}

	// Gram matrix G = A Aᵀ with a small ridge for redundant constraints.
	var g mat.Dense
	g.Mul(a, a.T())
	for i := 0; i < m; i++ {
		g.Set(i, i, g.At(i, i)+1e-12)
	}

	residual := mat.NewVecDense(m, nil)
	lambda := mat.NewVecDense(m, nil)
	xv := mat.NewVecDense(d, nil)
	correction := mat.NewVecDense(d, nil)

	for iter := 0; iter < iterations; iter++ {
		// residual = A x - b over the free part.
		for i := range b {
			var lhs float64
			for j := 0; j < d; j++ {
				lhs += a.At(i, j) * x[j]
			}
			residual.SetVec(i, lhs-b[i])
		}

		var maxResidual float64
		for i := 0; i < m; i++ {
			maxResidual = math.Max(maxResidual, math.Abs(residual.AtVec(i)))
		}
		if maxResidual <= FeasibilityTolerance/2 {
			return
		}

		// x <- x - Aᵀ (A Aᵀ)⁻¹ (A x - b)
		if err := lambda.SolveVec(&g, residual); err != nil {
			kaczmarzSweep(x, a, b)
		} else {
			for j := 0; j < d; j++ {
				xv.SetVec(j, x[j])
			}
			correction.MulVec(a.T(), lambda)
			for j := 0; j < d; j++ {
				x[j] = xv.AtVec(j) - correction.AtVec(j)
			}
		}

		clip(x, bounds, fixed)
	}
}

// kaczmarzSweep applies one cyclic row-projection pass, used as a fallback
// when the Gram system is singular.
func kaczmarzSweep(x []float64, a *mat.Dense, b []float64) {
	m, d := a.Dims()
	for i := 0; i < m; i++ {
		var dot, norm float64
		for j := 0; j < d; j++ {
			dot += a.At(i, j) * x[j]
			norm += a.At(i, j) * a.At(i, j)
		}
		if norm == 0 {
			continue
		}
		scale := (b[i] - dot) / norm
		for j := 0; j < d; j++ {
			x[j] += scale * a.At(i, j)
		}
	}
}

func clip(x []float64, bounds []params.Interval, fixed map[int]float64) {
	for i := range x {
		if _, pinned := fixed[i]; pinned {
			continue
		}
		x[i] = bounds[i].Clamp(x[i])
	}
}
