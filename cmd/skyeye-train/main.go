package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/skyeye-ml/skyeye/internal/config"
	"github.com/skyeye-ml/skyeye/internal/optim"
	"github.com/skyeye-ml/skyeye/internal/sched"
	"github.com/skyeye-ml/skyeye/internal/storage"
	"github.com/skyeye-ml/skyeye/internal/train"
)

const samples = 64

func main() {
	var (
		configPath = flag.String("config", "config.json", "Path to configuration file")
		resume     = flag.Bool("resume", false, "Resume from the last checkpoint")
		epochs     = flag.Int("epochs", 0, "Override the configured epoch count")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "❌ Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
		fmt.Printf("No config at %s, using defaults\n", *configPath)
	}
	if *epochs > 0 {
		cfg.Training.Epochs = *epochs
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.Logging, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger, *resume); err != nil {
		logger.Error("training failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, resume bool) error {
	store, err := storage.Open(cfg.Training.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer store.Close()

	model, err := newLinearModel(samples)
	if err != nil {
		return fmt.Errorf("failed to build model: %w", err)
	}
	defer model.vm.Close()

	groups := []*optim.ParamGroup{{
		Name:   "model",
		LR:     cfg.Training.BaseLR,
		Params: gorgonia.Nodes{model.w},
	}}

	opt, err := optim.NewAdam(groups,
		optim.WithClip(cfg.Training.GradientClipMax),
		optim.WithBatchSize(float64(cfg.Training.BatchSize)),
	)
	if err != nil {
		return fmt.Errorf("failed to create optimizer: %w", err)
	}

	var schedOpts []sched.Option
	if resume {
		cp, err := store.LoadCheckpoint()
		if err != nil {
			return err
		}
		if cp != nil {
			schedOpts = append(schedOpts, sched.WithLastEpoch(cp.LastEpoch))
			logger.Info("resuming from checkpoint",
				zap.String("run_id", cp.RunID),
				zap.Int("last_epoch", cp.LastEpoch),
			)
		}
	}

	scheduler, err := train.BuildScheduler(opt, cfg.Schedule, schedOpts...)
	if err != nil {
		return fmt.Errorf("failed to build scheduler: %w", err)
	}

	trainer, err := train.New(opt, scheduler, train.Config{
		Epochs:       cfg.Training.Epochs,
		SaveInterval: cfg.Training.SaveInterval,
	}, logger, store)
	if err != nil {
		return err
	}

	logger.Info("starting run",
		zap.String("run_id", store.RunID()),
		zap.String("schedule", cfg.Schedule.Type),
		zap.Int("epochs", cfg.Training.Epochs),
		zap.Float64("base_lr", cfg.Training.BaseLR),
	)

	if err := trainer.Run(model.epoch(opt)); err != nil {
		return err
	}

	final, ok := model.w.Value().Data().(float64)
	if ok {
		fmt.Printf("✅ Training complete, fitted slope %.4f (target %.1f)\n", final, slope)
	}
	return nil
}

func buildLogger(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	if cfg.Development || verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// The demo problem: fit y = slope*x by least squares, one parameter, one
// group. Small enough to run anywhere, real enough to exercise the full
// optimizer and schedule path.
const slope = 3.0

type linearModel struct {
	w    *gorgonia.Node
	x    *gorgonia.Node
	y    *gorgonia.Node
	loss *gorgonia.Node
	vm   gorgonia.VM

	xData tensor.Tensor
	yData tensor.Tensor
}

func newLinearModel(n int) (*linearModel, error) {
	g := gorgonia.NewGraph()

	w := gorgonia.NewScalar(g, tensor.Float64, gorgonia.WithName("w"), gorgonia.WithValue(0.0))
	x := gorgonia.NewVector(g, tensor.Float64, gorgonia.WithName("x"), gorgonia.WithShape(n))
	y := gorgonia.NewVector(g, tensor.Float64, gorgonia.WithName("y"), gorgonia.WithShape(n))

	pred, err := gorgonia.Mul(x, w)
	if err != nil {
		return nil, fmt.Errorf("failed to build prediction: %w", err)
	}
	diff, err := gorgonia.Sub(pred, y)
	if err != nil {
		return nil, fmt.Errorf("failed to build residual: %w", err)
	}
	sq, err := gorgonia.Square(diff)
	if err != nil {
		return nil, fmt.Errorf("failed to build squared error: %w", err)
	}
	loss, err := gorgonia.Mean(sq)
	if err != nil {
		return nil, fmt.Errorf("failed to build loss: %w", err)
	}

	if _, err := gorgonia.Grad(loss, w); err != nil {
		return nil, fmt.Errorf("failed to compute gradients: %w", err)
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i) / float64(n)
		ys[i] = slope * xs[i]
	}

	return &linearModel{
		w:     w,
		x:     x,
		y:     y,
		loss:  loss,
		vm:    gorgonia.NewTapeMachine(g),
		xData: tensor.New(tensor.WithShape(n), tensor.WithBacking(xs)),
		yData: tensor.New(tensor.WithShape(n), tensor.WithBacking(ys)),
	}, nil
}

// epoch returns the per-epoch pass the trainer drives.
func (m *linearModel) epoch(opt optim.Optimizer) train.EpochFunc {
	return func(_ int) (float64, error) {
		if err := gorgonia.Let(m.x, m.xData); err != nil {
			return 0, fmt.Errorf("failed to set input: %w", err)
		}
		if err := gorgonia.Let(m.y, m.yData); err != nil {
			return 0, fmt.Errorf("failed to set target: %w", err)
		}

		if err := m.vm.RunAll(); err != nil {
			return 0, fmt.Errorf("failed to run forward/backward: %w", err)
		}

		loss, ok := m.loss.Value().Data().(float64)
		if !ok {
			return 0, fmt.Errorf("unexpected loss value type: %T", m.loss.Value().Data())
		}

		if err := opt.Step(); err != nil {
			return 0, err
		}
		m.vm.Reset()

		return loss, nil
	}
}
