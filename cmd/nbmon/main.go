// nbmon - Cross-platform Network Bandwidth Monitor
//
// Polls per-interface traffic counters at a fixed cadence, derives
// instantaneous rates, and renders them as a live terminal dashboard.
// Use --simple for plain console output without the TUI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nozo-moto/nbmon/internal/collector"
	"github.com/nozo-moto/nbmon/internal/config"
	"github.com/nozo-moto/nbmon/internal/engine"
	"github.com/nozo-moto/nbmon/internal/ui"
	"github.com/nozo-moto/nbmon/pkg/format"
	"github.com/nozo-moto/nbmon/pkg/types"
)

var (
	configPath string
	interval   time.Duration
	window     time.Duration
	budget     time.Duration
	parallel   bool
	smoothing  float64
	simpleMode bool
	once       bool
	logLevel   string
	logFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "nbmon",
	Short:         "Terminal network bandwidth monitor",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", config.DefaultPath(), "config file path")
	flags.DurationVar(&interval, "interval", config.DefaultPollInterval, "polling interval")
	flags.DurationVar(&window, "window", config.DefaultWindow, "history window span")
	flags.DurationVar(&budget, "budget", config.DefaultCycleBudget, "per-cycle time budget")
	flags.BoolVar(&parallel, "parallel", true, "collect interfaces concurrently")
	flags.Float64Var(&smoothing, "smoothing", 0, "EWMA smoothing factor (0 disables)")
	flags.BoolVar(&simpleMode, "simple", false, "plain console output instead of the TUI")
	flags.BoolVar(&once, "once", false, "print one measurement and exit (implies --simple)")
	flags.StringVar(&logLevel, "log-level", "", "log level (overrides config)")
	flags.StringVar(&logFile, "log-file", "", "log destination (overrides config)")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := collector.NewPlatform()
	monitor := engine.NewMonitor(source, engine.Options{
		HistoryCapacity: cfg.HistoryCapacity(),
		CycleBudget:     cfg.CycleBudget,
		Parallel:        cfg.Parallel,
		EnumerateEvery:  cfg.EnumerateEvery,
		SmoothingAlpha:  cfg.SmoothingAlpha,
		Logger:          logger,
	})

	if simpleMode || once {
		return runSimple(ctx, monitor, cfg)
	}
	return ui.NewDashboard(monitor, cfg, logger).Run(ctx)
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("interval") {
		cfg.PollInterval = interval
	}
	if flags.Changed("window") {
		cfg.Window = window
	}
	if flags.Changed("budget") {
		cfg.CycleBudget = budget
	}
	if flags.Changed("parallel") {
		cfg.Parallel = parallel
	}
	if flags.Changed("smoothing") {
		cfg.SmoothingAlpha = smoothing
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
}

// setupLogging routes logs away from the terminal the TUI owns: to
// the configured file, to stderr in simple mode, or nowhere.
func setupLogging(cfg *config.Config) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger.SetLevel(level)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.SetOutput(f)
		return logger, f, nil
	}

	if simpleMode || once {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(io.Discard)
	}
	return logger, nil, nil
}

// runSimple prints interface details and a short burst of rate
// updates without taking over the terminal.
func runSimple(ctx context.Context, monitor *engine.Monitor, cfg *config.Config) error {
	// Seed cycle: enumerates and establishes counter baselines.
	result := monitor.Poll(ctx)
	if result.EnumerationErr != nil {
		return fmt.Errorf("cannot list interfaces: %w", result.EnumerationErr)
	}

	ifaces := monitor.Interfaces()
	if len(ifaces) == 0 {
		fmt.Println("No network interfaces found!")
		return nil
	}

	fmt.Println("Detected Network Interfaces:")
	for i, iface := range ifaces {
		fmt.Printf("\n[%d] %s\n", i+1, iface.DisplayName)
		fmt.Printf("    Kind: %s\n", iface.Kind)
		if iface.MACAddress != "" {
			fmt.Printf("    MAC: %s\n", iface.MACAddress)
		}
		state := "DOWN"
		if iface.IsUp {
			state = "UP"
		}
		fmt.Printf("    State: %s\n", state)
		if iface.SpeedBps > 0 {
			fmt.Printf("    Speed: %s\n", format.BitsPerSec(float64(iface.SpeedBps)))
		}
	}

	updates := 5
	if once {
		updates = 1
	}

	fmt.Printf("\nMonitoring (%d updates at %s)...\n", updates, cfg.PollInterval)
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()

	for i := 1; i <= updates; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		result = monitor.Poll(ctx)
		fmt.Printf("\n[Update %d]\n", i)
		printCycle(monitor, result)
	}
	return nil
}

func printCycle(monitor *engine.Monitor, result types.CycleResult) {
	for _, iface := range monitor.Interfaces() {
		if iface.Kind == types.KindLoopback {
			continue
		}
		if rate, ok := result.Rates[iface.ID]; ok {
			fmt.Printf("  %s (%s):\n", iface.DisplayName, iface.Kind)
			fmt.Printf("    ↓ %s  ↑ %s\n",
				format.BitsPerSec(rate.RxBps), format.BitsPerSec(rate.TxBps))
			if rate.Reset {
				fmt.Println("    (counter reset)")
			}
		} else if cerr, ok := result.Errors[iface.ID]; ok {
			fmt.Printf("  %s: no data (%s)\n", iface.DisplayName, cerr.Kind)
		}
	}
}
