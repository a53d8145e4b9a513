package optim

import (
	"fmt"

	"gorgonia.org/gorgonia"
)

// Adam wraps one gorgonia Adam solver per parameter group. Solvers are
// rebuilt whenever the group's learning rate no longer matches the rate the
// solver was created with; rebuilding resets Adam's moment estimates.
type Adam struct {
	groups    []*ParamGroup
	clip      float64
	batchSize float64
	solvers   []gorgonia.Solver
	solverLR  []float64
}

// AdamOption configures an Adam optimizer.
type AdamOption func(*Adam)

// WithClip enables gradient clipping at the given magnitude.
func WithClip(clip float64) AdamOption {
	return func(a *Adam) { a.clip = clip }
}

// WithBatchSize scales gradient application by the batch size.
func WithBatchSize(n float64) AdamOption {
	return func(a *Adam) { a.batchSize = n }
}

// NewAdam creates an Adam optimizer over the given parameter groups.
func NewAdam(groups []*ParamGroup, opts ...AdamOption) (*Adam, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}

	a := &Adam{
		groups:   groups,
		solvers:  make([]gorgonia.Solver, len(groups)),
		solverLR: make([]float64, len(groups)),
	}
	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// ParamGroups returns the optimizer's parameter groups.
func (a *Adam) ParamGroups() []*ParamGroup {
	return a.groups
}

// Step applies the current gradients to every parameter group.
func (a *Adam) Step() error {
	for i, g := range a.groups {
		if a.solvers[i] == nil || a.solverLR[i] != g.LR {
			a.solvers[i] = gorgonia.NewAdamSolver(a.solverOpts(g.LR)...)
			a.solverLR[i] = g.LR
		}

		if err := a.solvers[i].Step(valueGrads(g)); err != nil {
			return fmt.Errorf("failed to update group %q: %w", g.Name, err)
		}
	}

	return nil
}

func (a *Adam) solverOpts(lr float64) []gorgonia.SolverOpt {
	opts := []gorgonia.SolverOpt{gorgonia.WithLearnRate(lr)}
	if a.batchSize > 0 {
		opts = append(opts, gorgonia.WithBatchSize(a.batchSize))
	}
	if a.clip > 0 {
		opts = append(opts, gorgonia.WithClip(a.clip))
	}
	return opts
}
