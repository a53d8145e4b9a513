package optim

import (
	"fmt"

	"gorgonia.org/gorgonia"
)

// Vanilla wraps one plain SGD solver per parameter group. Unlike Adam it
// carries no per-parameter state, so rebuilding on a rate change is free.
type Vanilla struct {
	groups   []*ParamGroup
	clip     float64
	solvers  []gorgonia.Solver
	solverLR []float64
}

// VanillaOption configures a Vanilla optimizer.
type VanillaOption func(*Vanilla)

// WithVanillaClip enables gradient clipping at the given magnitude.
func WithVanillaClip(clip float64) VanillaOption {
	return func(v *Vanilla) { v.clip = clip }
}

// NewVanilla creates a plain SGD optimizer over the given parameter groups.
func NewVanilla(groups []*ParamGroup, opts ...VanillaOption) (*Vanilla, error) {
	if err := validateGroups(groups); err != nil {
		return nil, err
	}

	v := &Vanilla{
		groups:   groups,
		solvers:  make([]gorgonia.Solver, len(groups)),
		solverLR: make([]float64, len(groups)),
	}
	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// ParamGroups returns the optimizer's parameter groups.
func (v *Vanilla) ParamGroups() []*ParamGroup {
	return v.groups
}

// Step applies the current gradients to every parameter group.
func (v *Vanilla) Step() error {
	for i, g := range v.groups {
		if v.solvers[i] == nil || v.solverLR[i] != g.LR {
			v.solvers[i] = gorgonia.NewVanillaSolver(v.solverOpts(g.LR)...)
			v.solverLR[i] = g.LR
		}

		if err := v.solvers[i].Step(valueGrads(g)); err != nil {
			return fmt.Errorf("failed to update group %q: %w", g.Name, err)
		}
	}

	return nil
}

func (v *Vanilla) solverOpts(lr float64) []gorgonia.SolverOpt {
	opts := []gorgonia.SolverOpt{gorgonia.WithLearnRate(lr)}
	if v.clip > 0 {
		opts = append(opts, gorgonia.WithClip(v.clip))
	}
	return opts
}
