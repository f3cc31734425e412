package surrogate

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/XiaoConstantine/baydesign-go/pkg/errors"
)

// GaussianProcess is a Gaussian process regressor with an RBF kernel.
// Fitting factorizes the kernel matrix once; predictions reuse the
// factorization. The model is not safe for concurrent Fit calls, but
// Posterior may be called concurrently after a successful Fit.
type GaussianProcess struct {
	// LengthScale is the RBF kernel width. Larger values produce smoother
	// interpolation.
	LengthScale float64

	// NoiseVariance is added to the kernel diagonal, acting both as
	// observation noise and as numerical jitter for the factorization.
	NoiseVariance float64

	x     [][]float64
	alpha *mat.VecDense
	chol  *mat.Cholesky
}

// NewGaussianProcess creates a GP with reasonable defaults.
func NewGaussianProcess() *GaussianProcess {
	return &GaussianProcess{
		LengthScale:   1.0,
		NoiseVariance: 1e-6,
	}
}

// kernel is the RBF kernel k(a, b) = exp(-|a-b|^2 / (2 l^2)).
func (gp *GaussianProcess) kernel(a, b []float64) float64 {
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Exp(-sum / (2 * gp.LengthScale * gp.LengthScale))
}

// Fit trains the model on observed points and values.
func (gp *GaussianProcess) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return errors.New(errors.InvalidInput, "cannot fit on an empty training set")
	}
	if len(X) != len(y) {
		return errors.Errorf(errors.InvalidInput,
			"training points and targets must have equal length, got %d and %d", len(X), len(y))
	}
	dim := len(X[0])
	for _, row := range X {
		if len(row) != dim {
			return errors.New(errors.InvalidInput, "training points must share one dimension")
		}
	}

	n := len(X)
	k := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := gp.kernel(X[i], X[j])
			if i == j {
				v += gp.NoiseVariance
			}
			k.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(k); !ok {
		// Retry with a larger jitter before giving up.
		for i := 0; i < n; i++ {
			k.SetSym(i, i, k.At(i, i)+1e-4)
		}
		if ok := chol.Factorize(k); !ok {
			return errors.New(errors.OptimizationFailed,
				"kernel matrix is not positive definite")
		}
	}

	alpha := mat.NewVecDense(n, nil)
	if err := chol.SolveVecTo(alpha, mat.NewVecDense(n, y)); err != nil {
		return errors.Wrap(err, errors.OptimizationFailed, "solving for kernel weights")
	}

	gp.x = X
	gp.alpha = alpha
	gp.chol = &chol
	return nil
}

// Posterior returns the predictive mean and variance at x. An unfitted
// model returns the prior: zero mean, unit variance.
func (gp *GaussianProcess) Posterior(x []float64) (mean, variance float64) {
	if gp.chol == nil {
		return 0, 1
	}

	n := len(gp.x)
	kstar := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		kstar.SetVec(i, gp.kernel(gp.x[i], x))
	}

	mean = mat.Dot(kstar, gp.alpha)

	v := mat.NewVecDense(n, nil)
	if err := gp.chol.SolveVecTo(v, kstar); err != nil {
		// Numerical failure on the variance term only: stay conservative.
		return mean, 1
	}
	variance = gp.kernel(x, x) - mat.Dot(kstar, v)
	if variance < 0 {
		variance = 0
	}
	return mean, variance
}
