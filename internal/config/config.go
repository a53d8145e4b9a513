package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Schedule type names accepted in configuration files.
const (
	ScheduleMultiStep   = "multistep"
	ScheduleCosine      = "cosine"
	ScheduleStepDecay   = "step"
	ScheduleExponential = "exponential"
)

// Config represents the application configuration
type Config struct {
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
	Training TrainingConfig `json:"training" yaml:"training"`
	Logging  LoggingConfig  `json:"logging" yaml:"logging"`
}

// ScheduleConfig selects and parameterizes a learning-rate schedule
type ScheduleConfig struct {
	Type string `json:"type" yaml:"type"`

	// multistep
	Milestones []int     `json:"milestones,omitempty" yaml:"milestones,omitempty"`
	Gammas     []float64 `json:"gammas,omitempty" yaml:"gammas,omitempty"`

	// cosine
	WarmupSteps int     `json:"warmup_steps,omitempty" yaml:"warmup_steps,omitempty"`
	TotalSteps  int     `json:"total_steps,omitempty" yaml:"total_steps,omitempty"`
	MinFactor   float64 `json:"min_factor,omitempty" yaml:"min_factor,omitempty"`

	// step and exponential
	Interval int     `json:"interval,omitempty" yaml:"interval,omitempty"`
	Decay    float64 `json:"decay,omitempty" yaml:"decay,omitempty"`

	// Optional warmup wrapper around any of the above.
	BurnIn *BurnInConfig `json:"burn_in,omitempty" yaml:"burn_in,omitempty"`
}

// BurnInConfig contains linear warmup settings
type BurnInConfig struct {
	Steps int     `json:"steps" yaml:"steps"`
	Start float64 `json:"start" yaml:"start"`
}

// TrainingConfig contains training loop settings
type TrainingConfig struct {
	Epochs          int     `json:"epochs" yaml:"epochs"`
	BaseLR          float64 `json:"base_lr" yaml:"base_lr"`
	BatchSize       int     `json:"batch_size" yaml:"batch_size"`
	GradientClipMax float64 `json:"gradient_clip_max" yaml:"gradient_clip_max"`
	SaveInterval    int     `json:"save_interval" yaml:"save_interval"`
	DBPath          string  `json:"db_path" yaml:"db_path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Schedule: ScheduleConfig{
			Type:       ScheduleMultiStep,
			Milestones: []int{30, 80},
			Gammas:     []float64{0.1, 0.01},
			BurnIn: &BurnInConfig{
				Steps: 10,
				Start: 0.1,
			},
		},
		Training: TrainingConfig{
			Epochs:          100,
			BaseLR:          0.05,
			BatchSize:       64,
			GradientClipMax: 5.0,
			SaveInterval:    5,
			DBPath:          "data/runs.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads and parses a configuration file. Files ending in .yaml or .yml
// are parsed as YAML, everything else as JSON.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the configuration to a file, in the format matching its
// extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the configuration for obviously broken settings. Schedule
// construction performs its own, stricter validation.
func (c *Config) Validate() error {
	switch c.Schedule.Type {
	case ScheduleMultiStep:
		if len(c.Schedule.Milestones) != len(c.Schedule.Gammas) {
			return fmt.Errorf("schedule: %d milestones but %d gammas",
				len(c.Schedule.Milestones), len(c.Schedule.Gammas))
		}
	case ScheduleCosine:
		if c.Schedule.TotalSteps < 1 {
			return fmt.Errorf("schedule: cosine needs total_steps >= 1")
		}
	case ScheduleStepDecay:
		if c.Schedule.Interval < 1 {
			return fmt.Errorf("schedule: step decay needs interval >= 1")
		}
	case ScheduleExponential:
		if c.Schedule.Decay <= 0 || c.Schedule.Decay > 1 {
			return fmt.Errorf("schedule: exponential decay must be in (0, 1]")
		}
	default:
		return fmt.Errorf("schedule: unknown type %q", c.Schedule.Type)
	}

	if bi := c.Schedule.BurnIn; bi != nil {
		if bi.Steps < 1 {
			return fmt.Errorf("schedule: burn-in needs steps >= 1")
		}
		if bi.Start <= 0 || bi.Start > 1 {
			return fmt.Errorf("schedule: burn-in start must be in (0, 1]")
		}
	}

	if c.Training.Epochs < 1 {
		return fmt.Errorf("training: epochs must be at least 1")
	}
	if c.Training.BaseLR <= 0 {
		return fmt.Errorf("training: base_lr must be positive")
	}
	if c.Training.BatchSize < 1 {
		return fmt.Errorf("training: batch_size must be at least 1")
	}

	return nil
}
