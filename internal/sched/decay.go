package sched

import (
	"fmt"
	"math"
)

// CosineAnnealing ramps linearly over the warmup steps, then decays the
// rates along a half cosine from the full base rate down to minFactor*base
// at totalSteps, where they stay.
type CosineAnnealing struct {
	warmupSteps int
	totalSteps  int
	minFactor   float64
}

// NewCosineAnnealing creates the schedule. warmupSteps may be zero; it must
// be smaller than totalSteps.
func NewCosineAnnealing(warmupSteps, totalSteps int, minFactor float64) (*CosineAnnealing, error) {
	if totalSteps < 1 {
		return nil, fmt.Errorf("%w: cosine annealing needs at least one step, got %d",
			ErrInvalidConfig, totalSteps)
	}
	if warmupSteps < 0 || warmupSteps >= totalSteps {
		return nil, fmt.Errorf("%w: warmup steps must be in [0, %d), got %d",
			ErrInvalidConfig, totalSteps, warmupSteps)
	}
	if minFactor < 0 || minFactor > 1 {
		return nil, fmt.Errorf("%w: minimum factor must be in [0, 1], got %g",
			ErrInvalidConfig, minFactor)
	}

	return &CosineAnnealing{
		warmupSteps: warmupSteps,
		totalSteps:  totalSteps,
		minFactor:   minFactor,
	}, nil
}

// RatesAt returns the base rates scaled by the warmup or cosine factor.
func (c *CosineAnnealing) RatesAt(step int, baseRates []float64) []float64 {
	if step < 0 {
		step = 0
	}

	if step < c.warmupSteps {
		return scaled(baseRates, float64(step+1)/float64(c.warmupSteps))
	}

	progress := float64(step-c.warmupSteps) / float64(c.totalSteps-c.warmupSteps)
	if progress > 1 {
		progress = 1
	}
	cosine := 0.5 * (1 + math.Cos(math.Pi*progress))
	return scaled(baseRates, c.minFactor+(1-c.minFactor)*cosine)
}

// StepDecay multiplies the base rates by decay^(step/interval): every
// interval epochs the factor compounds once more.
type StepDecay struct {
	interval int
	decay    float64
}

// NewStepDecay creates the schedule.
func NewStepDecay(interval int, decay float64) (*StepDecay, error) {
	if interval < 1 {
		return nil, fmt.Errorf("%w: decay interval must be at least 1, got %d",
			ErrInvalidConfig, interval)
	}
	if decay <= 0 || decay > 1 {
		return nil, fmt.Errorf("%w: decay must be in (0, 1], got %g", ErrInvalidConfig, decay)
	}

	return &StepDecay{interval: interval, decay: decay}, nil
}

// RatesAt returns the base rates scaled by the compounded decay factor.
func (s *StepDecay) RatesAt(step int, baseRates []float64) []float64 {
	if step < 0 {
		step = 0
	}
	return scaled(baseRates, math.Pow(s.decay, float64(step/s.interval)))
}

// Exponential multiplies the base rates by decay^step.
type Exponential struct {
	decay float64
}

// NewExponential creates the schedule.
func NewExponential(decay float64) (*Exponential, error) {
	if decay <= 0 || decay > 1 {
		return nil, fmt.Errorf("%w: decay must be in (0, 1], got %g", ErrInvalidConfig, decay)
	}
	return &Exponential{decay: decay}, nil
}

// RatesAt returns the base rates scaled by decay^step.
func (e *Exponential) RatesAt(step int, baseRates []float64) []float64 {
	if step < 0 {
		step = 0
	}
	return scaled(baseRates, math.Pow(e.decay, float64(step)))
}
