package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"pixelmill/internal/config"
	"pixelmill/internal/item"
	"pixelmill/internal/journal"
	"pixelmill/internal/logging"
	"pixelmill/internal/pipeline"
)

func newOptimizeCommand(configFlag *string) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "optimize <file>...",
		Short: "Run the configured pipeline over image files",
		Long:  "Loads every input file, pushes it through the configured pipeline steps, and writes the results to the output directory.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configFlag)
			if err != nil {
				return err
			}
			if outputDir != "" {
				cfg.OutputDir = config.ExpandPath(outputDir)
			}
			return runOptimize(cmd.Context(), cfg, args, cmd)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for optimized files (overrides config)")
	return cmd
}

func runOptimize(ctx context.Context, cfg *config.Config, paths []string, cmd *cobra.Command) error {
	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		return err
	}

	specs, err := buildStepSpecs(cfg)
	if err != nil {
		return err
	}
	steps, err := pipeline.Compile(specs)
	if err != nil {
		return err
	}
	pipe, err := pipeline.New(steps, logger)
	if err != nil {
		return err
	}

	items := make([]*item.Item, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		items = append(items, item.New(path, data))
	}

	var (
		store *journal.Store
		runID int64
	)
	if cfg.Journal.Enabled {
		store, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err = store.BeginRun(ctx)
		if err != nil {
			return err
		}
	}

	logger.Info("starting batch",
		"items", len(items),
		"steps", len(steps),
		"concurrency", cfg.Concurrency)

	results, err := pipe.RunBatch(ctx, items, cfg.Concurrency)
	if err != nil {
		if store != nil {
			_ = store.FinishRun(ctx, runID)
		}
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	rows := make([][]string, 0, len(results))
	for i, result := range results {
		original := items[i]
		status := classifyResult(original, result)

		if status == journal.StatusOptimized {
			dest := filepath.Join(cfg.OutputDir, filepath.Base(result.Filename))
			if err := os.WriteFile(dest, result.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", dest, err)
			}
		}

		if store != nil {
			if err := store.RecordItem(ctx, runID, original, result, status); err != nil {
				logger.Warn("journal write failed", "filename", original.Filename, "error", err)
			}
		}

		rows = append(rows, resultRow(original, result, status))
	}

	if store != nil {
		if err := store.FinishRun(ctx, runID); err != nil {
			logger.Warn("journal finish failed", "error", err)
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"File", "Status", "Output", "In", "Out"}, rows, 4, 5))
	return nil
}

// classifyResult maps a batch outcome onto a journal status. An item with
// recorded errors failed; one whose payload never changed was skipped.
func classifyResult(original, result *item.Item) journal.ItemStatus {
	if result == nil || len(result.Errors) > 0 {
		return journal.StatusFailed
	}
	if len(result.Data) == len(original.Data) && result.Filename == original.Filename && len(result.Warnings) > 0 {
		return journal.StatusSkipped
	}
	return journal.StatusOptimized
}

func resultRow(original, result *item.Item, status journal.ItemStatus) []string {
	output := ""
	bytesOut := ""
	if result != nil {
		output = result.Filename
		bytesOut = fmt.Sprintf("%d", len(result.Data))
	}
	return []string{
		original.Filename,
		string(status),
		output,
		fmt.Sprintf("%d", len(original.Data)),
		bytesOut,
	}
}
