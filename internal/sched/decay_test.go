package sched

import (
	"errors"
	"testing"
)

func TestCosineAnnealingValidation(t *testing.T) {
	tests := []struct {
		name      string
		warmup    int
		total     int
		minFactor float64
		wantErr   bool
	}{
		{"Valid", 10, 100, 0.01, false},
		{"NoWarmup", 0, 100, 0.0, false},
		{"ZeroTotal", 0, 0, 0.01, true},
		{"WarmupPastTotal", 100, 100, 0.01, true},
		{"NegativeWarmup", -1, 100, 0.01, true},
		{"MinFactorAboveOne", 0, 100, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCosineAnnealing(tt.warmup, tt.total, tt.minFactor)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("Expected ErrInvalidConfig, got %v", err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestCosineAnnealingCurve(t *testing.T) {
	schedule, err := NewCosineAnnealing(10, 110, 0.01)
	if err != nil {
		t.Fatalf("Failed to create schedule: %v", err)
	}

	base := []float64{1.0}

	// Linear warmup over the first ten steps.
	if got := schedule.RatesAt(0, base)[0]; !almostEqual(got, 0.1) {
		t.Errorf("Rate at step 0 = %g; want 0.1", got)
	}
	if got := schedule.RatesAt(4, base)[0]; !almostEqual(got, 0.5) {
		t.Errorf("Rate at step 4 = %g; want 0.5", got)
	}

	// Full rate at the end of warmup, minimum at and past totalSteps.
	if got := schedule.RatesAt(10, base)[0]; !almostEqual(got, 1.0) {
		t.Errorf("Rate at step 10 = %g; want 1.0", got)
	}
	if got := schedule.RatesAt(110, base)[0]; !almostEqual(got, 0.01) {
		t.Errorf("Rate at step 110 = %g; want 0.01", got)
	}
	if got := schedule.RatesAt(500, base)[0]; !almostEqual(got, 0.01) {
		t.Errorf("Rate at step 500 = %g; want 0.01", got)
	}

	// Halfway through the cosine phase the factor is the midpoint.
	if got := schedule.RatesAt(60, base)[0]; !almostEqual(got, 0.505) {
		t.Errorf("Rate at step 60 = %g; want 0.505", got)
	}
}

func TestStepDecay(t *testing.T) {
	if _, err := NewStepDecay(0, 0.5); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for zero interval, got %v", err)
	}
	if _, err := NewStepDecay(10, 1.5); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for decay above one, got %v", err)
	}

	schedule, err := NewStepDecay(10, 0.5)
	if err != nil {
		t.Fatalf("Failed to create schedule: %v", err)
	}

	base := []float64{1.0}
	tests := []struct {
		step     int
		expected float64
	}{
		{0, 1.0},
		{9, 1.0},
		{10, 0.5},
		{19, 0.5},
		{25, 0.25},
	}

	for _, tt := range tests {
		if got := schedule.RatesAt(tt.step, base)[0]; !almostEqual(got, tt.expected) {
			t.Errorf("Rate at step %d = %g; want %g", tt.step, got, tt.expected)
		}
	}
}

func TestExponential(t *testing.T) {
	if _, err := NewExponential(0); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for zero decay, got %v", err)
	}

	schedule, err := NewExponential(0.9)
	if err != nil {
		t.Fatalf("Failed to create schedule: %v", err)
	}

	base := []float64{1.0}
	tests := []struct {
		step     int
		expected float64
	}{
		{0, 1.0},
		{1, 0.9},
		{2, 0.81},
	}

	for _, tt := range tests {
		if got := schedule.RatesAt(tt.step, base)[0]; !almostEqual(got, tt.expected) {
			t.Errorf("Rate at step %d = %g; want %g", tt.step, got, tt.expected)
		}
	}
}
