// Package ingest converts OCR backend output into the raw detections the
// layout package orders.
//
// Supported inputs are Azure Document Intelligence analyze results, PaddleOCR
// result files (both the PP-OCR rec_texts form and the classic nested list),
// Tesseract hOCR, and a generic list of detections.
//
// Basic usage:
//
//	doc, err := ingest.ParseFile("page_res.json", ingest.Options{})
//	if err != nil {
//	    // handle error
//	}
//	dets := doc.Detections()
package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/model"
)

var (
	// ErrUnknownFormat is returned when the input format cannot be determined
	// or is not a detection format.
	ErrUnknownFormat = errors.New("unknown detection format")

	// ErrMalformed is returned when the input does not match the structure
	// of its format.
	ErrMalformed = errors.New("malformed detection data")
)

// Options controls parsing.
type Options struct {
	// NormalizeText applies NFC composition and folds fullwidth ASCII
	// (punctuation and digits from CJK recognizers) to its narrow form.
	NormalizeText bool
}

// parser turns raw bytes into a document.
type parser func(data []byte, doc *model.Document) error

var parsers = map[format.Format]parser{
	format.AzureJSON:    parseAzure,
	format.PaddleJSON:   parsePaddle,
	format.PaddleLegacy: parsePaddleLegacy,
	format.HOCR:         parseHOCR,
	format.Generic:      parseGeneric,
}

// Parse returns the detections of every page of data, in page order.
// Unknown format is sniffed from the content.
func Parse(data []byte, f format.Format, opts Options) ([]model.Detection, error) {
	doc, err := ParseDocument("", data, f, opts)
	if err != nil {
		return nil, err
	}
	return doc.Detections(), nil
}

// ParsePages returns the detections grouped per page.
func ParsePages(data []byte, f format.Format, opts Options) ([]*model.Page, error) {
	doc, err := ParseDocument("", data, f, opts)
	if err != nil {
		return nil, err
	}
	return doc.Pages, nil
}

// ParseDocument parses data into a document named after source.
func ParseDocument(source string, data []byte, f format.Format, opts Options) (*model.Document, error) {
	if f == format.Unknown {
		f = format.Sniff(data)
	}

	parse, ok := parsers[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}

	doc := model.NewDocument(source, f.String())
	if err := parse(data, doc); err != nil {
		return nil, err
	}

	if opts.NormalizeText {
		for _, page := range doc.Pages {
			for i := range page.Detections {
				page.Detections[i].Text = NormalizeText(page.Detections[i].Text)
			}
		}
	}

	return doc, nil
}

// ParseFile reads and parses a detection file. The format comes from the
// extension when it is conclusive and from the content otherwise.
func ParseFile(filename string, opts Options) (*model.Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ParseDocument(filepath.Base(filename), data, format.DetectFile(filename, data), opts)
}

// NormalizeText composes text to NFC and folds fullwidth compatibility
// characters to their canonical width.
func NormalizeText(s string) string {
	out, _, err := transform.String(transform.Chain(norm.NFC, width.Fold), s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(out)
}

func malformed(backend string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformed, backend, err)
}
