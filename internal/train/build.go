package train

import (
	"fmt"

	"github.com/skyeye-ml/skyeye/internal/config"
	"github.com/skyeye-ml/skyeye/internal/optim"
	"github.com/skyeye-ml/skyeye/internal/sched"
)

// BuildScheduler assembles the scheduler described by the configuration,
// wiring the optional burn-in wrapper around the configured schedule. The
// options (e.g. sched.WithLastEpoch for resumed runs) apply to the inner
// scheduler; a burn-in wrapper picks the counter up from there.
func BuildScheduler(opt optim.Optimizer, cfg config.ScheduleConfig, opts ...sched.Option) (sched.Stepper, error) {
	var (
		schedule sched.Schedule
		err      error
	)

	switch cfg.Type {
	case config.ScheduleMultiStep:
		schedule, err = sched.NewMultiStepMultiGamma(cfg.Milestones, cfg.Gammas)
	case config.ScheduleCosine:
		schedule, err = sched.NewCosineAnnealing(cfg.WarmupSteps, cfg.TotalSteps, cfg.MinFactor)
	case config.ScheduleStepDecay:
		schedule, err = sched.NewStepDecay(cfg.Interval, cfg.Decay)
	case config.ScheduleExponential:
		schedule, err = sched.NewExponential(cfg.Decay)
	default:
		return nil, fmt.Errorf("%w: unknown schedule type %q", sched.ErrInvalidConfig, cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	scheduler, err := sched.New(opt, schedule, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.BurnIn == nil {
		return scheduler, nil
	}

	return sched.NewBurnIn(scheduler, cfg.BurnIn.Steps, cfg.BurnIn.Start)
}
