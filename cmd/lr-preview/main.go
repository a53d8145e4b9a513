package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/skyeye-ml/skyeye/internal/config"
	"github.com/skyeye-ml/skyeye/internal/optim"
	"github.com/skyeye-ml/skyeye/internal/train"
)

// lr-preview prints the learning-rate curve a configuration produces, so a
// schedule can be sanity-checked before committing to a long run.
func main() {
	var (
		configPath = flag.String("config", "config.json", "Path to configuration file")
		epochs     = flag.Int("epochs", 0, "Number of epochs to preview (default: configured epochs)")
		every      = flag.Int("every", 1, "Print every Nth epoch")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "❌ Failed to load configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
		fmt.Printf("No config at %s, previewing defaults\n", *configPath)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	n := cfg.Training.Epochs
	if *epochs > 0 {
		n = *epochs
	}
	if *every < 1 {
		*every = 1
	}

	group := &optim.ParamGroup{Name: "model", LR: cfg.Training.BaseLR}
	opt, err := optim.NewVanilla([]*optim.ParamGroup{group})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create optimizer: %v\n", err)
		os.Exit(1)
	}

	scheduler, err := train.BuildScheduler(opt, cfg.Schedule)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to build scheduler: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Schedule: %s, base LR %g, %d epochs\n\n", cfg.Schedule.Type, cfg.Training.BaseLR, n)
	fmt.Println("epoch  rate")

	for epoch := 0; epoch < n; epoch++ {
		scheduler.Step()
		if epoch % *every == 0 {
			fmt.Printf("%5d  %.8f\n", epoch, group.LR)
		}
	}
}
