package optim

import (
	"fmt"

	"gorgonia.org/gorgonia"
)

// ParamGroup is a named set of learnable nodes sharing one learning rate.
// The LR field is read when gradients are applied, so schedule code can
// rewrite it between steps.
type ParamGroup struct {
	Name   string
	LR     float64
	Params gorgonia.Nodes
}

// Optimizer applies accumulated gradients to its parameter groups.
type Optimizer interface {
	ParamGroups() []*ParamGroup
	Step() error
}

func validateGroups(groups []*ParamGroup) error {
	if len(groups) == 0 {
		return fmt.Errorf("optimizer needs at least one parameter group")
	}
	for i, g := range groups {
		if g == nil {
			return fmt.Errorf("parameter group %d is nil", i)
		}
		if g.LR <= 0 {
			return fmt.Errorf("parameter group %q has non-positive learning rate %g", g.Name, g.LR)
		}
	}
	return nil
}

func valueGrads(g *ParamGroup) []gorgonia.ValueGrad {
	grads := make([]gorgonia.ValueGrad, len(g.Params))
	for i, n := range g.Params {
		grads[i] = n
	}
	return grads
}
