package sched

import (
	"errors"
	"fmt"

	"github.com/skyeye-ml/skyeye/internal/optim"
)

// ErrInvalidConfig is wrapped by every construction-time validation failure
// in this package.
var ErrInvalidConfig = errors.New("invalid schedule configuration")

// Schedule computes one learning rate per parameter group for a given step.
// Implementations are pure functions of the step counter and the base rates;
// all counter and optimizer bookkeeping lives in Scheduler.
type Schedule interface {
	RatesAt(step int, baseRates []float64) []float64
}

// Stepper is the stepping surface shared by Scheduler and BurnIn, so a
// training loop can drive either without caring which it holds.
type Stepper interface {
	Step()
	StepTo(epoch int)
	GetLR() []float64
	LastEpoch() int
}

// Scheduler binds a Schedule to an optimizer. It snapshots one base rate per
// parameter group at construction and tracks the epoch counter; each Step
// recomputes the rate vector and writes it into the optimizer's groups.
//
// A fresh scheduler starts at epoch -1 and applies nothing until the first
// Step, which moves the counter to 0.
type Scheduler struct {
	opt       optim.Optimizer
	schedule  Schedule
	baseRates []float64
	lastEpoch int
}

// Option configures a Scheduler at construction.
type Option func(*Scheduler)

// WithLastEpoch resumes the counter at the given epoch instead of -1, for
// runs restarted from a checkpoint.
func WithLastEpoch(epoch int) Option {
	return func(s *Scheduler) { s.lastEpoch = epoch }
}

// New creates a scheduler for the given optimizer and schedule.
func New(opt optim.Optimizer, schedule Schedule, opts ...Option) (*Scheduler, error) {
	if opt == nil {
		return nil, fmt.Errorf("%w: optimizer is nil", ErrInvalidConfig)
	}
	if schedule == nil {
		return nil, fmt.Errorf("%w: schedule is nil", ErrInvalidConfig)
	}

	groups := opt.ParamGroups()
	if len(groups) == 0 {
		return nil, fmt.Errorf("%w: optimizer has no parameter groups", ErrInvalidConfig)
	}

	baseRates := make([]float64, len(groups))
	for i, g := range groups {
		baseRates[i] = g.LR
	}

	s := &Scheduler{
		opt:       opt,
		schedule:  schedule,
		baseRates: baseRates,
		lastEpoch: -1,
	}
	for _, apply := range opts {
		apply(s)
	}

	return s, nil
}

// Step advances the counter by one and applies the new rates.
func (s *Scheduler) Step() {
	s.StepTo(s.lastEpoch + 1)
}

// StepTo moves the counter to the given epoch and applies the new rates.
func (s *Scheduler) StepTo(epoch int) {
	s.lastEpoch = epoch
	s.apply()
}

// GetLR returns the rate vector for the current counter without touching
// any state.
func (s *Scheduler) GetLR() []float64 {
	return s.schedule.RatesAt(s.lastEpoch, s.baseRates)
}

// LastEpoch returns the current counter value.
func (s *Scheduler) LastEpoch() int {
	return s.lastEpoch
}

// BaseRates returns a copy of the base-rate snapshot.
func (s *Scheduler) BaseRates() []float64 {
	out := make([]float64, len(s.baseRates))
	copy(out, s.baseRates)
	return out
}

func (s *Scheduler) apply() {
	rates := s.schedule.RatesAt(s.lastEpoch, s.baseRates)
	for i, g := range s.opt.ParamGroups() {
		g.LR = rates[i]
	}
}

func scaled(baseRates []float64, factor float64) []float64 {
	rates := make([]float64, len(baseRates))
	for i, base := range baseRates {
		rates[i] = base * factor
	}
	return rates
}
