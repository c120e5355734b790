package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/courtside/internal/simulate"
	"github.com/okian/courtside/pkg/logger"
)

// Default configuration constants.
const (
	defaultSeed           = 42
	defaultMinutes        = 2.5
	defaultTimeout        = 30 * time.Second
	defaultSimulationTime = 10 * time.Minute
)

func main() {
	var (
		baseURL     = flag.String("url", "", "Base URL of a running service (default: in-process session)")
		seed        = flag.Int64("seed", defaultSeed, "Random seed for survey answers and manual readings")
		checkpoints = flag.Int("checkpoints", simulate.MaxCheckpoints, "Number of checkpoints to play")
		biometric   = flag.String("biometric", simulate.ModeManual, "Capture mode: manual or derived")
		minutes     = flag.Float64("minutes", defaultMinutes, "Clock advancement per checkpoint")
		timeout     = flag.Duration("timeout", defaultTimeout, "Per-phase wait and HTTP request timeout")
		output      = flag.String("output", "", "Report file (default: stdout)")
		format      = flag.String("format", simulate.FormatYAML, "Report format: yaml or json")
		verbose     = flag.Bool("verbose", false, "Log every checkpoint")
		help        = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// Logs go to stderr so a stdout report stays clean.
	if err := logger.InitWithFormat(os.Stderr, "text"); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if !*verbose {
		_ = logger.SetLevelString("warn")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultSimulationTime)
	defer cancel()

	config := &simulate.Config{
		BaseURL:        *baseURL,
		Seed:           *seed,
		Checkpoints:    *checkpoints,
		BiometricMode:  *biometric,
		AdvanceMinutes: *minutes,
		Timeout:        *timeout,
		Output:         *output,
		Format:         *format,
		Verbose:        *verbose,
	}

	report, err := simulate.Run(ctx, config)
	if err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := report.Save(config.Output, config.Format); err != nil {
		os.Stderr.WriteString("Failed to write report: " + err.Error() + "\n")
		os.Exit(1)
	}
}
