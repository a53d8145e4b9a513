package sched

import (
	"fmt"
	"sort"
)

// MultiStepMultiGamma scales the base rates by a per-interval factor. The
// factor table is [1.0, gammas...], indexed by how many milestones the step
// counter has reached. Each gamma multiplies the base rate directly; the
// factors do not compound across intervals.
//
// With milestones [30, 80] and gammas [0.1, 0.01], a base rate of 0.05 stays
// 0.05 through epoch 29, drops to 0.005 at epoch 30 and to 0.0005 at epoch 80.
type MultiStepMultiGamma struct {
	milestones []int
	factors    []float64
}

// NewMultiStepMultiGamma creates the schedule. Milestones must be strictly
// increasing and match the gammas in length.
func NewMultiStepMultiGamma(milestones []int, gammas []float64) (*MultiStepMultiGamma, error) {
	for i := 1; i < len(milestones); i++ {
		if milestones[i] <= milestones[i-1] {
			return nil, fmt.Errorf("%w: milestones must be strictly increasing, got %v",
				ErrInvalidConfig, milestones)
		}
	}
	if len(milestones) != len(gammas) {
		return nil, fmt.Errorf("%w: got %d milestones but %d gammas",
			ErrInvalidConfig, len(milestones), len(gammas))
	}

	factors := make([]float64, 0, len(gammas)+1)
	factors = append(factors, 1.0)
	factors = append(factors, gammas...)

	return &MultiStepMultiGamma{
		milestones: append([]int(nil), milestones...),
		factors:    factors,
	}, nil
}

// RatesAt returns the base rates scaled by the factor for the interval
// containing step. A step equal to a milestone counts as past it.
func (m *MultiStepMultiGamma) RatesAt(step int, baseRates []float64) []float64 {
	passed := sort.Search(len(m.milestones), func(i int) bool {
		return m.milestones[i] > step
	})
	return scaled(baseRates, m.factors[passed])
}
