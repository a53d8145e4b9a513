package sched

import (
	"fmt"
)

// BurnIn wraps another scheduler with a linear warmup. While the counter is
// at or below steps, rates ramp from start*base at epoch 0 to the full base
// rate at epoch == steps; afterwards every query is answered by the inner
// scheduler at its own counter.
//
// BurnIn owns the inner scheduler's counter: every Step and StepTo forces it
// to the wrapper's value before rates are computed. Callers must not step the
// inner scheduler themselves, or the post-warmup rates silently drift.
type BurnIn struct {
	inner *Scheduler
	base  *Scheduler
	steps int
	start float64
}

// NewBurnIn wraps inner with a warmup of the given duration, starting at the
// start fraction of the base rates. The wrapper picks up the inner
// scheduler's counter, so wrapping a resumed scheduler resumes the warmup too.
func NewBurnIn(inner *Scheduler, steps int, start float64) (*BurnIn, error) {
	if inner == nil {
		return nil, fmt.Errorf("%w: inner scheduler is nil", ErrInvalidConfig)
	}
	if steps < 1 {
		return nil, fmt.Errorf("%w: burn-in needs at least one step, got %d", ErrInvalidConfig, steps)
	}
	if start <= 0 || start > 1 {
		return nil, fmt.Errorf("%w: burn-in start must be in (0, 1], got %g", ErrInvalidConfig, start)
	}

	b := &BurnIn{
		inner: inner,
		steps: steps,
		start: start,
	}
	b.base = &Scheduler{
		opt:       inner.opt,
		schedule:  (*burnInSchedule)(b),
		baseRates: inner.BaseRates(),
		lastEpoch: inner.LastEpoch(),
	}

	return b, nil
}

// Step advances the wrapper by one epoch.
func (b *BurnIn) Step() {
	b.StepTo(b.base.lastEpoch + 1)
}

// StepTo moves the wrapper to the given epoch and applies the new rates. The
// inner scheduler's counter is synchronized first, so delegated rate queries
// see the same position.
func (b *BurnIn) StepTo(epoch int) {
	b.inner.lastEpoch = epoch
	b.base.StepTo(epoch)
}

// GetLR returns the rate vector for the current counter.
func (b *BurnIn) GetLR() []float64 {
	return b.base.GetLR()
}

// LastEpoch returns the current counter value.
func (b *BurnIn) LastEpoch() int {
	return b.base.lastEpoch
}

// burnInSchedule is BurnIn's rate function, split out so the wrapper can
// reuse the plain Scheduler bookkeeping.
type burnInSchedule BurnIn

func (s *burnInSchedule) RatesAt(step int, baseRates []float64) []float64 {
	if step < 0 {
		step = 0
	}
	if step <= s.steps {
		alpha := (1 - s.start) / float64(s.steps)
		return scaled(baseRates, float64(step)*alpha+s.start)
	}
	return s.inner.GetLR()
}
