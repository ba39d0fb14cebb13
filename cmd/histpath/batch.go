package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/internal/jobs"
	"github.com/histpath/readingorder/internal/logger"
)

const orderSuffix = ".order.json"

var batchCmd = &cobra.Command{
	Use:   "batch DIR",
	Short: "Order every detection file in a directory",
	Long: `Process every detection file in DIR concurrently and write the result of
each next to it as <name>.order.json. Files that fail are reported and do not
stop the batch.`,
	Example: `  # Order a directory of PaddleOCR results with 8 workers
  histpath batch ./scans --workers 8`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addStrategyFlags(batchCmd)
	batchCmd.Flags().Int("workers", 0, "Concurrent documents (default from BATCH_WORKERS)")
	batchCmd.Flags().BoolP("recursive", "r", false, "Descend into subdirectories")
	batchCmd.Flags().Bool("pretty", false, "Indent JSON output")
}

func runBatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("batch")

	strategy, normalize, err := strategyFromFlags(cmd)
	if err != nil {
		return err
	}

	workers := appConfig.BatchWorkers
	if cmd.Flags().Changed("workers") {
		workers, _ = cmd.Flags().GetInt("workers")
	}
	recursive, _ := cmd.Flags().GetBool("recursive")
	pretty, _ := cmd.Flags().GetBool("pretty")

	files, err := collectDetectionFiles(args[0], recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Warn().Str("dir", args[0]).Msg("No detection files found")
		return nil
	}

	tasks := make([]jobs.Task, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		tasks = append(tasks, jobs.Task{
			Source: path,
			Data:   data,
			Format: format.DetectFile(path, data),
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := jobs.NewRunner(jobs.NewMemoryStore(), jobs.OrderProcessor(strategy, normalize, log), jobs.RunnerConfig{
		Workers: workers,
		Logger:  log,
	})

	log.Info().
		Int("files", len(tasks)).
		Int("workers", runner.Workers()).
		Str("strategy", strategy.Name).
		Msg("Starting batch")

	results, err := runner.Run(ctx, tasks)
	if err != nil {
		return err
	}

	failed := 0
	for i, job := range results {
		if job.State != jobs.StateCompleted {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: %s\n", job.Source, job.Error)
			continue
		}

		out := outputPath(job.Source)
		if err := writeJSON(out, OrderOutput{
			Source:   filepath.Base(job.Source),
			Format:   tasks[i].Format.String(),
			Results:  job.Results,
			Warnings: job.Warnings,
		}, pretty); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		fmt.Fprintf(os.Stdout, "%s -> %s\n", job.Source, out)
	}

	log.Info().
		Int("completed", len(results)-failed).
		Int("failed", failed).
		Msg("Batch complete")

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(results))
	}
	return nil
}

// collectDetectionFiles lists the files of dir that may hold detections,
// skipping earlier outputs.
func collectDetectionFiles(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if isDetectionFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	return files, nil
}

func isDetectionFile(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if strings.HasSuffix(name, orderSuffix) {
		return false
	}
	if strings.HasSuffix(name, ".json") {
		return true
	}
	return format.Detect(path) == format.HOCR
}

// outputPath returns <dir>/<name without extension>.order.json.
func outputPath(source string) string {
	ext := filepath.Ext(source)
	return strings.TrimSuffix(source, ext) + orderSuffix
}
