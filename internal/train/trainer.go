package train

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/skyeye-ml/skyeye/internal/optim"
	"github.com/skyeye-ml/skyeye/internal/sched"
	"github.com/skyeye-ml/skyeye/internal/storage"
)

// Config holds training-loop settings
type Config struct {
	Epochs       int
	SaveInterval int // Checkpoint every N epochs; 0 disables periodic checkpoints
}

// EpochFunc runs one full pass over the data and reports the mean loss. The
// trainer has already applied this epoch's learning rates when it is called.
type EpochFunc func(epoch int) (loss float64, err error)

// Trainer drives the epoch loop: applies the schedule, runs the epoch,
// logs progress and records it in the run store.
type Trainer struct {
	opt       optim.Optimizer
	scheduler sched.Stepper
	store     *storage.RunStore
	logger    *zap.Logger
	config    Config
}

// New creates a trainer. The store may be nil, in which case nothing is
// persisted; a nil logger disables logging.
func New(opt optim.Optimizer, scheduler sched.Stepper, config Config, logger *zap.Logger, store *storage.RunStore) (*Trainer, error) {
	if opt == nil {
		return nil, fmt.Errorf("optimizer is nil")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("scheduler is nil")
	}
	if config.Epochs < 1 {
		return nil, fmt.Errorf("epochs must be at least 1, got %d", config.Epochs)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Trainer{
		opt:       opt,
		scheduler: scheduler,
		store:     store,
		logger:    logger,
		config:    config,
	}, nil
}

// Run trains for the configured number of epochs, continuing from the
// scheduler's current position when it was resumed from a checkpoint.
func (t *Trainer) Run(fn EpochFunc) error {
	if fn == nil {
		return fmt.Errorf("epoch function is nil")
	}

	first := t.scheduler.LastEpoch() + 1

	for epoch := first; epoch < first+t.config.Epochs; epoch++ {
		startTime := time.Now()

		// Rates for this epoch are in place before any batch runs.
		t.scheduler.StepTo(epoch)

		loss, err := fn(epoch)
		if err != nil {
			return fmt.Errorf("epoch %d failed: %w", epoch, err)
		}

		duration := time.Since(startTime)
		rates := t.scheduler.GetLR()

		t.logger.Info("epoch complete",
			zap.Int("epoch", epoch),
			zap.Float64("loss", loss),
			zap.Float64s("rates", rates),
			zap.Duration("duration", duration),
		)

		if t.store != nil {
			rec := storage.EpochRecord{
				Epoch:      epoch,
				Loss:       loss,
				Rates:      rates,
				DurationMs: float64(duration.Milliseconds()),
			}
			if err := t.store.Record(rec); err != nil {
				return fmt.Errorf("failed to record epoch %d: %w", epoch, err)
			}

			if t.config.SaveInterval > 0 && (epoch+1)%t.config.SaveInterval == 0 {
				if err := t.store.SaveCheckpoint(epoch); err != nil {
					t.logger.Warn("failed to save checkpoint",
						zap.Int("epoch", epoch),
						zap.Error(err),
					)
				}
			}
		}
	}

	if t.store != nil {
		if err := t.store.SaveCheckpoint(t.scheduler.LastEpoch()); err != nil {
			return fmt.Errorf("failed to save final checkpoint: %w", err)
		}
	}

	return nil
}
