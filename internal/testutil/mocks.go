// Package testutil holds shared test doubles for the recommendation engine.
package testutil

import (
	"context"
	"sync"

	"github.com/XiaoConstantine/baydesign-go/pkg/optim"
)

// MockAcquisition is a scriptable acquisition function that records every
// evaluation.
type MockAcquisition struct {
	mu sync.Mutex

	// Score computes the utility of a batch; defaults to the sum of all
	// coordinates when nil.
	Score func(batch [][]float64) (float64, error)

	// MonteCarlo is returned from IsMonteCarlo.
	MonteCarlo bool

	calls int
}

func (m *MockAcquisition) Evaluate(batch [][]float64) (float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.Score != nil {
		return m.Score(batch)
	}
	var sum float64
	for _, point := range batch {
		for _, v := range point {
			sum += v
		}
	}
	return sum, nil
}

func (m *MockAcquisition) IsMonteCarlo() bool { return m.MonteCarlo }

// Calls returns the number of Evaluate invocations.
func (m *MockAcquisition) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockOptimizer records every Optimize call and returns the scripted result.
type MockOptimizer struct {
	mu sync.Mutex

	// Result and Value are returned on success; Err short-circuits.
	Result [][]float64
	Value  float64
	Err    error

	problems []optim.Problem
}

func (m *MockOptimizer) Optimize(_ context.Context, problem optim.Problem) ([][]float64, float64, error) {
	m.mu.Lock()
	m.problems = append(m.problems, problem)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, 0, m.Err
	}
	return m.Result, m.Value, nil
}

// CallCount returns the number of Optimize invocations.
func (m *MockOptimizer) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.problems)
}

// Problems returns the recorded problems in call order.
func (m *MockOptimizer) Problems() []optim.Problem {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]optim.Problem, len(m.problems))
	copy(out, m.problems)
	return out
}
