// Package surrogate provides probabilistic regression models that map
// candidate points to a posterior mean and variance. The recommenders treat
// models as external collaborators behind the Model interface; the Gaussian
// process implementation here is the default.
package surrogate

// Model is a probabilistic surrogate over the search space. Fit trains on
// the observed points; Posterior returns mean and variance of the predictive
// distribution at a single point.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Posterior(x []float64) (mean, variance float64)
}
