package train

import (
	"errors"
	"testing"

	"github.com/skyeye-ml/skyeye/internal/config"
	"github.com/skyeye-ml/skyeye/internal/sched"
)

func TestBuildScheduler(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ScheduleConfig
	}{
		{"MultiStep", config.ScheduleConfig{
			Type:       config.ScheduleMultiStep,
			Milestones: []int{30, 80},
			Gammas:     []float64{0.1, 0.01},
		}},
		{"Cosine", config.ScheduleConfig{
			Type:       config.ScheduleCosine,
			TotalSteps: 100,
			MinFactor:  0.01,
		}},
		{"StepDecay", config.ScheduleConfig{
			Type:     config.ScheduleStepDecay,
			Interval: 10,
			Decay:    0.5,
		}},
		{"Exponential", config.ScheduleConfig{
			Type:  config.ScheduleExponential,
			Decay: 0.95,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opt := newTestOptimizer(t, 0.05)
			scheduler, err := BuildScheduler(opt, tt.cfg)
			if err != nil {
				t.Fatalf("Failed to build scheduler: %v", err)
			}

			scheduler.Step()
			if scheduler.LastEpoch() != 0 {
				t.Errorf("Counter after first step = %d; want 0", scheduler.LastEpoch())
			}
		})
	}
}

func TestBuildSchedulerWithBurnIn(t *testing.T) {
	opt := newTestOptimizer(t, 1.0)
	cfg := config.ScheduleConfig{
		Type:       config.ScheduleMultiStep,
		Milestones: []int{30},
		Gammas:     []float64{0.1},
		BurnIn:     &config.BurnInConfig{Steps: 10, Start: 0.1},
	}

	scheduler, err := BuildScheduler(opt, cfg)
	if err != nil {
		t.Fatalf("Failed to build scheduler: %v", err)
	}

	if _, ok := scheduler.(*sched.BurnIn); !ok {
		t.Fatalf("Expected a burn-in wrapper, got %T", scheduler)
	}

	scheduler.StepTo(0)
	if !almostEqual(opt.ParamGroups()[0].LR, 0.1) {
		t.Errorf("LR at epoch 0 = %g; want 0.1", opt.ParamGroups()[0].LR)
	}
}

func TestBuildSchedulerResume(t *testing.T) {
	opt := newTestOptimizer(t, 0.05)
	cfg := config.ScheduleConfig{
		Type:       config.ScheduleMultiStep,
		Milestones: []int{30},
		Gammas:     []float64{0.1},
		BurnIn:     &config.BurnInConfig{Steps: 10, Start: 0.1},
	}

	scheduler, err := BuildScheduler(opt, cfg, sched.WithLastEpoch(29))
	if err != nil {
		t.Fatalf("Failed to build scheduler: %v", err)
	}

	if scheduler.LastEpoch() != 29 {
		t.Fatalf("Resumed counter = %d; want 29", scheduler.LastEpoch())
	}

	scheduler.Step()
	if !almostEqual(opt.ParamGroups()[0].LR, 0.005) {
		t.Errorf("LR at epoch 30 = %g; want 0.005", opt.ParamGroups()[0].LR)
	}
}

func TestBuildSchedulerErrors(t *testing.T) {
	opt := newTestOptimizer(t, 0.05)

	tests := []struct {
		name string
		cfg  config.ScheduleConfig
	}{
		{"UnknownType", config.ScheduleConfig{Type: "polynomial"}},
		{"BadMilestones", config.ScheduleConfig{
			Type:       config.ScheduleMultiStep,
			Milestones: []int{80, 30},
			Gammas:     []float64{0.1, 0.01},
		}},
		{"BadBurnIn", config.ScheduleConfig{
			Type:       config.ScheduleMultiStep,
			Milestones: []int{30},
			Gammas:     []float64{0.1},
			BurnIn:     &config.BurnInConfig{Steps: 0, Start: 0.1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := BuildScheduler(opt, tt.cfg); !errors.Is(err, sched.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
