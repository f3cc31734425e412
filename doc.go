// Package baydesign is a Go library for sequential experimental design
// ("Bayesian optimization") over mixed discrete/continuous parameter spaces
// subject to constraints.
//
// The library centers on a constraint-aware recommendation engine: given a
// search space with linear equality/inequality constraints and cardinality
// (sparsity) constraints, it produces batches of candidate experiments by
// optimizing an acquisition function over the feasible region.
//
// Key Components:
//
//   - Params: Interval arithmetic, continuous/discrete parameter definitions
//     and the activation utility that moves parameter bounds away from a
//     near-zero dead zone.
//
//   - Constraints: Linear in-/equality constraints with solver-neutral
//     export, and cardinality constraints with combinatorial enumeration and
//     sampling of inactive-parameter sets.
//
//   - SearchSpace: Continuous, discrete and hybrid subspaces with random
//     constraint-satisfying sampling.
//
//   - Recommenders: The constrained recommender decomposes cardinality
//     constraints into fixed-to-zero subproblems, drives an external
//     continuous optimizer on each, and selects the best batch. A random
//     recommender covers the cold-start case.
//
//   - Surrogate & Acquisition: A Gaussian process surrogate and standard
//     acquisition functions (UCB, EI, PI, and a Monte Carlo batch variant)
//     as swappable default collaborators.
//
//   - Campaign: Ties measurements, surrogate fitting and recommendation
//     together into an iterate-measure-recommend loop.
//
// The external continuous optimizer and the acquisition function are narrow
// interfaces, so both can be replaced by custom implementations or test
// stubs without touching the recommendation logic.
package baydesign
