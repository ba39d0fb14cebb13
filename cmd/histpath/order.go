package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/histpath/readingorder"
	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/internal/logger"
	"github.com/histpath/readingorder/model"
)

var orderCmd = &cobra.Command{
	Use:   "order FILE",
	Short: "Order the detections of one file",
	Long: `Parse a detection file, reconstruct its reading order and print the
result as JSON. The input format is detected from the extension and content
unless --format is given. Multi-page inputs are ordered page by page.`,
	Example: `  # JSON result for a PaddleOCR page
  histpath order page_res.json

  # Plain text, one line per column
  histpath order analyze.json --lines

  # Sequential grouping with a wider threshold, pages 2 and 3 only
  histpath order book.hocr --strategy sequential --threshold 80 --pages 2,3`,
	Args: cobra.ExactArgs(1),
	RunE: runOrder,
}

// OrderOutput is the JSON written by the order command.
type OrderOutput struct {
	Source   string         `json:"source"`
	Format   string         `json:"format"`
	Results  []model.Result `json:"results"`
	Warnings []string       `json:"warnings,omitempty"`
}

func init() {
	rootCmd.AddCommand(orderCmd)

	addStrategyFlags(orderCmd)
	orderCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	orderCmd.Flags().String("format", "", "Force input format: azure, paddle, paddle-legacy, hocr, generic")
	orderCmd.Flags().IntSlice("pages", nil, "Pages to order (1-indexed, default all)")
	orderCmd.Flags().Bool("text", false, "Print the full text instead of JSON")
	orderCmd.Flags().Bool("lines", false, "Print one line per column instead of JSON")
	orderCmd.Flags().Bool("pretty", false, "Indent JSON output")
}

func runOrder(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("order")

	strategy, normalize, err := strategyFromFlags(cmd)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	pages, _ := cmd.Flags().GetIntSlice("pages")
	asText, _ := cmd.Flags().GetBool("text")
	asLines, _ := cmd.Flags().GetBool("lines")
	pretty, _ := cmd.Flags().GetBool("pretty")

	path := args[0]
	log.Info().
		Str("file", path).
		Str("strategy", strategy.Name).
		Ints("pages", pages).
		Msg("Ordering detections")

	ord := readingorder.Open(path).
		WithStrategyConfig(strategy).
		WithLogger(log)
	if formatName != "" {
		f := format.Parse(formatName)
		if !f.IsDetections() {
			return fmt.Errorf("unknown format %q", formatName)
		}
		ord = ord.Format(f)
	}
	if normalize {
		ord = ord.NormalizeText()
	}
	if len(pages) > 0 {
		ord = ord.Pages(pages...)
	}

	switch {
	case asText:
		text, warnings, err := ord.Text()
		if err != nil {
			return err
		}
		logWarnings(log, warnings)
		return writeText(outputPath, text)

	case asLines:
		lines, warnings, err := ord.Lines()
		if err != nil {
			return err
		}
		logWarnings(log, warnings)
		return writeText(outputPath, strings.Join(lines, "\n"))
	}

	doc, err := ord.Document()
	if err != nil {
		return err
	}
	results, warnings, err := ord.Results()
	if err != nil {
		return err
	}
	logWarnings(log, warnings)

	out := OrderOutput{
		Source:  doc.Source,
		Format:  doc.Backend,
		Results: results,
	}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, w.String())
	}

	log.Info().Int("pages", len(results)).Msg("Ordering complete")
	return writeJSON(outputPath, out, pretty)
}

func logWarnings(log zerolog.Logger, warnings []readingorder.Warning) {
	for _, w := range warnings {
		log.Warn().
			Int("page", w.Page).
			Str("type", w.Type.String()).
			Msg(w.Message)
	}
}
