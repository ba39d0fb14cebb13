package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/histpath/readingorder/internal/config"
	"github.com/histpath/readingorder/internal/logger"
	"github.com/histpath/readingorder/layout"
)

var version = "0.3.0"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// appConfig is loaded before any subcommand runs.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "histpath",
	Short: "Reading order reconstruction for vertical historical documents",
	Long: `histpath orders OCR detections of vertical, right-to-left CJK pages
(classical Chinese, historical Japanese) into reading sequence: columns from
right to left, characters top to bottom within each column.

Input is a detection file from Azure Document Intelligence, PaddleOCR,
Tesseract hOCR or the generic detection list. Configuration comes from the
environment and an optional .env file; flags override it.`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringSlice("env-file", []string{".env"}, "Environment files to load")
	rootCmd.PersistentFlags().String("log-level", "", "Override LOG_LEVEL")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		log := logger.WithComponent("cmd")
		log.Error().Err(err).Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return err
}

func loadConfig(cmd *cobra.Command, args []string) error {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		os.Setenv("LOG_LEVEL", level)
	}

	cfg, err := config.Load()
	if err != nil {
		// Still log the failure in the configured shape where possible.
		_ = logger.Setup(logger.DefaultConfig())
		return fmt.Errorf("loading configuration: %w", err)
	}
	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}

	appConfig = cfg
	return nil
}

// addStrategyFlags registers the clustering overrides shared by every
// command that orders detections.
func addStrategyFlags(cmd *cobra.Command) {
	cmd.Flags().String("strategy", "", "Clustering strategy: dbscan or sequential (default from ORDER_STRATEGY)")
	cmd.Flags().Float64("eps", 0, "DBSCAN neighborhood radius on center x")
	cmd.Flags().Float64("threshold", 0, "Sequential grouping distance on center x")
	cmd.Flags().Int("min-samples", 0, "DBSCAN minimum neighborhood size")
	cmd.Flags().Float64("max-reassign-distance", 0, "Cap on noise reassignment distance (0 = unlimited)")
	cmd.Flags().Bool("normalize", false, "NFC-compose text and fold fullwidth ASCII")
}

// strategyFromFlags applies the flags the user set on top of the loaded
// configuration and validates the result.
func strategyFromFlags(cmd *cobra.Command) (layout.StrategyConfig, bool, error) {
	cfg := appConfig.StrategyConfig()
	flags := cmd.Flags()

	if flags.Changed("strategy") {
		cfg.Name, _ = flags.GetString("strategy")
	}
	if flags.Changed("eps") {
		cfg.Eps, _ = flags.GetFloat64("eps")
	}
	if flags.Changed("threshold") {
		cfg.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("min-samples") {
		cfg.MinSamples, _ = flags.GetInt("min-samples")
	}
	if flags.Changed("max-reassign-distance") {
		cfg.MaxReassignDistance, _ = flags.GetFloat64("max-reassign-distance")
	}

	normalize := appConfig.NormalizeText
	if flags.Changed("normalize") {
		normalize, _ = flags.GetBool("normalize")
	}

	if _, err := layout.NewStrategy(cfg); err != nil {
		return layout.StrategyConfig{}, false, err
	}
	return cfg, normalize, nil
}

// writeJSON encodes v to path, or to stdout when path is empty.
func writeJSON(path string, v interface{}, pretty bool) error {
	var data []byte
	var err error
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeText writes s to path, or to stdout when path is empty.
func writeText(path, s string) error {
	if path == "" {
		_, err := fmt.Fprintln(os.Stdout, s)
		return err
	}
	return os.WriteFile(path, []byte(s+"\n"), 0o644)
}
