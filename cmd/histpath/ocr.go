package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/histpath/readingorder"
	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/internal/logger"
	"github.com/histpath/readingorder/ocr"
)

var ocrCmd = &cobra.Command{
	Use:   "ocr IMAGE",
	Short: "Recognize a page scan with Tesseract and order the result",
	Long: `Run Tesseract on a page image (PNG, JPEG, TIFF, BMP or WebP), then
reconstruct the reading order of the recognized words.

Requires a binary built with the "ocr" tag and Tesseract with the vertical
traditional Chinese model installed.`,
	Example: `  histpath ocr page.tif --text
  histpath ocr page.png --lang jpn_vert --binarize 0`,
	Args: cobra.ExactArgs(1),
	RunE: runOCR,
}

func init() {
	rootCmd.AddCommand(ocrCmd)

	addStrategyFlags(ocrCmd)
	ocrCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	ocrCmd.Flags().String("lang", "", "Tesseract language (default from OCR_LANG)")
	ocrCmd.Flags().Int("binarize", -1, "Binarization threshold 0-255, 0 disables (default from OCR_BINARIZE_THRESHOLD)")
	ocrCmd.Flags().Bool("text", false, "Print the full text instead of JSON")
	ocrCmd.Flags().Bool("pretty", false, "Indent JSON output")
}

func runOCR(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("ocr")

	strategy, normalize, err := strategyFromFlags(cmd)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	asText, _ := cmd.Flags().GetBool("text")
	pretty, _ := cmd.Flags().GetBool("pretty")

	cfg := appConfig.OCRConfig()
	if lang, _ := cmd.Flags().GetString("lang"); lang != "" {
		cfg.Language = lang
	}
	if cmd.Flags().Changed("binarize") {
		cfg.BinarizeThreshold, _ = cmd.Flags().GetInt("binarize")
	}

	path := args[0]
	if f := format.Detect(path); f != format.Image {
		return fmt.Errorf("%s is not a supported image", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	client, err := ocr.NewWithConfig(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	log.Info().
		Str("file", path).
		Str("lang", cfg.Language).
		Int("binarize", cfg.BinarizeThreshold).
		Msg("Recognizing image")

	dets, err := client.Detect(data)
	if err != nil {
		return err
	}
	log.Info().Int("detections", len(dets)).Msg("Recognition complete")

	ord := readingorder.FromDetections(dets).
		WithStrategyConfig(strategy).
		WithLogger(log)
	if normalize {
		ord = ord.NormalizeText()
	}

	if asText {
		text, warnings, err := ord.Text()
		if err != nil {
			return err
		}
		logWarnings(log, warnings)
		return writeText(outputPath, text)
	}

	results, warnings, err := ord.Results()
	if err != nil {
		return err
	}
	logWarnings(log, warnings)

	out := OrderOutput{Source: path, Format: "tesseract", Results: results}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, w.String())
	}
	return writeJSON(outputPath, out, pretty)
}
