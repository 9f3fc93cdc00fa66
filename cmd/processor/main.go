// Command processor runs the fuel price refresh pipeline headlessly:
// load, derive, aggregate, and export without starting the web server.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"fuelpulse/internal/config"
	"fuelpulse/internal/infrastructure"
	"fuelpulse/internal/operations"
)

type options struct {
	source  string
	mode    string
	step    string
	timeout time.Duration
}

func main() {
	var opts options
	flag.StringVar(&opts.source, "source", "", "dataset file to process (defaults to the newest file in the data directory)")
	flag.StringVar(&opts.mode, "mode", operations.ModeFull, "refresh mode: full or incremental")
	flag.StringVar(&opts.step, "step", "", "run a single pipeline step (load, derive, aggregate, export)")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "overall pipeline timeout")
	flag.Parse()

	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = &config.Config{
			Logging: config.LoggingConfig{
				Level:    "info",
				Format:   "json",
				Output:   "both",
				FilePath: paths.GetLogPath("processor.log"),
			},
		}
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting fuel price pipeline",
		slog.String("source", opts.source),
		slog.String("mode", opts.mode),
		slog.String("step", opts.step),
		slog.String("data_dir", paths.DataDir))

	resp, err := runPipeline(context.Background(), cfg, paths, logger, opts)
	if resp != nil {
		printSummary(os.Stdout, resp)
	}
	if err != nil {
		logger.Error("Pipeline failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Pipeline completed",
		slog.String("operation_id", resp.ID),
		slog.Duration("duration", resp.Duration))
}

// runPipeline executes the refresh pipeline without a websocket hub.
func runPipeline(ctx context.Context, cfg *config.Config, paths *config.Paths, logger *slog.Logger, opts options) (*operations.OperationResponse, error) {
	manager := operations.NewManager(nil, nil, nil)
	if err := operations.RegisterPipelineSteps(manager, cfg, paths, logger); err != nil {
		return nil, fmt.Errorf("register pipeline steps: %w", err)
	}

	req := operations.OperationRequest{
		Mode:       opts.mode,
		SourceFile: opts.source,
	}
	if opts.step != "" {
		req.Parameters = map[string]interface{}{"step": opts.step}
	}

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	return manager.Execute(ctx, req)
}

// printSummary writes a per-step result table for operators running the
// pipeline from a terminal or cron job.
func printSummary(w io.Writer, resp *operations.OperationResponse) {
	fmt.Fprintf(w, "operation %s: %s (%s)\n", resp.ID, resp.Status, resp.Duration.Round(time.Millisecond))

	for _, id := range []string{operations.StepIDLoad, operations.StepIDDerive, operations.StepIDAggregate, operations.StepIDExport} {
		step, ok := resp.Steps[id]
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %-10s %s", step.ID, step.Status)
		if step.Error != nil {
			line += fmt.Sprintf(": %v", step.Error)
		} else if step.Message != "" {
			line += ": " + step.Message
		}
		fmt.Fprintln(w, line)
	}

	if resp.Error != "" {
		fmt.Fprintf(w, "error: %s\n", resp.Error)
	}
}
