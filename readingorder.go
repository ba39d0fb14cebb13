// Package readingorder provides a fluent API for reconstructing the reading
// order of vertical, right-to-left OCR output.
//
// Basic usage:
//
//	text, warnings, err := readingorder.Open("page_res.json").Text()
//	if err != nil {
//	    // handle error
//	}
//	if len(warnings) > 0 {
//	    log.Println("Warnings:", readingorder.FormatWarnings(warnings))
//	}
//
// With options:
//
//	seq, _, err := readingorder.Open("scan.hocr").
//	    Sequential(50).
//	    NormalizeText().
//	    Sequence()
//
// For advanced use cases, the lower-level layout and ingest packages are
// also available.
package readingorder

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/layout"
	"github.com/histpath/readingorder/model"
)

// Open reads a detection file and returns an Orderer for fluent
// configuration. The file is read lazily by the first terminal operation.
// The format is taken from the extension when conclusive and sniffed from
// the content otherwise.
//
// Example:
//
//	text, warnings, err := readingorder.Open("analyze.json").Text()
func Open(filename string) *Orderer {
	return &Orderer{
		filename: filename,
		options:  defaultOptions(),
	}
}

// FromBytes creates an Orderer over in-memory detection data. Pass
// format.Unknown to sniff the format.
//
// Example:
//
//	seq, _, err := readingorder.FromBytes(body, format.Unknown).Sequence()
func FromBytes(data []byte, f format.Format) *Orderer {
	return &Orderer{
		data:    data,
		format:  f,
		options: defaultOptions(),
	}
}

// FromDetections creates an Orderer over detections already in memory,
// treated as a single page.
//
// Example:
//
//	seq, _, err := readingorder.FromDetections(dets).DensityBased(120).Sequence()
func FromDetections(dets []model.Detection) *Orderer {
	doc := model.NewDocument("memory", "")
	page := model.NewPage(0, 0)
	for _, d := range dets {
		page.AddDetection(d)
	}
	doc.AddPage(page)
	return FromDocument(doc)
}

// FromDocument creates an Orderer over a parsed document.
// The document is not modified.
func FromDocument(doc *model.Document) *Orderer {
	return &Orderer{
		doc:     doc,
		options: defaultOptions(),
	}
}

// Reconstruct orders one page of detections with strategy, or with the
// default density-based clustering when strategy is nil. It is the
// non-fluent form of FromDetections(dets).Strategy(strategy).Sequence()
// without page warnings.
func Reconstruct(dets []model.Detection, strategy layout.ClusteringStrategy) (*layout.ReadingSequence, error) {
	detector := layout.NewReadingOrderDetectorWithConfig(layout.ReadingOrderConfig{
		Strategy: strategy,
		Logger:   zerolog.Nop(),
	})
	return detector.Detect(dets)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	count := readingorder.Must(readingorder.Open("analyze.json").PageCount())
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

// MustText is a helper that wraps a call to Text() or Sequence() and panics
// if the error is non-nil. It discards warnings and returns just the value.
//
// Example:
//
//	text := readingorder.MustText(readingorder.Open("analyze.json").Text())
func MustText[T any](val T, _ []Warning, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func readFile(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}
