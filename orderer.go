package readingorder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/histpath/readingorder/format"
	"github.com/histpath/readingorder/ingest"
	"github.com/histpath/readingorder/layout"
	"github.com/histpath/readingorder/model"
	"github.com/histpath/readingorder/text"
)

// Orderer provides a fluent interface for ordering OCR detections.
// Each configuration method returns a new Orderer instance, making it
// safe for concurrent use and allowing method chaining.
type Orderer struct {
	// Source (exactly one is set)
	filename string
	data     []byte
	doc      *model.Document

	format format.Format

	// Configuration
	options OrderOptions

	// Accumulated error (fail-fast)
	err error
}

// PageSequence is the ordering of one page.
type PageSequence struct {
	Page     int
	Sequence *layout.ReadingSequence
}

// clone creates a shallow copy of the Orderer with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (o *Orderer) clone() *Orderer {
	return &Orderer{
		filename: o.filename,
		data:     o.data,
		doc:      o.doc,
		format:   o.format,
		options:  o.options.clone(),
		err:      o.err,
	}
}

// document parses the source if needed. The parsed document is not cached
// so that a shared Orderer never mutates.
func (o *Orderer) document() (*model.Document, error) {
	opts := ingest.Options{NormalizeText: o.options.normalizeText}

	switch {
	case o.doc != nil:
		if !opts.NormalizeText {
			return o.doc, nil
		}
		return normalizedCopy(o.doc), nil
	case o.filename != "":
		if o.format != format.Unknown {
			data, err := readFile(o.filename)
			if err != nil {
				return nil, err
			}
			return ingest.ParseDocument(o.filename, data, o.format, opts)
		}
		return ingest.ParseFile(o.filename, opts)
	case o.data != nil:
		return ingest.ParseDocument("bytes", o.data, o.format, opts)
	default:
		return nil, fmt.Errorf("no input specified")
	}
}

func normalizedCopy(doc *model.Document) *model.Document {
	out := model.NewDocument(doc.Source, doc.Backend)
	for _, p := range doc.Pages {
		page := *p
		page.Detections = make([]model.Detection, len(p.Detections))
		for i, d := range p.Detections {
			d.Text = ingest.NormalizeText(d.Text)
			page.Detections[i] = d
		}
		out.Pages = append(out.Pages, &page)
	}
	return out
}

// ============================================================================
// Configuration Methods (return new Orderer instance)
// ============================================================================

// Format forces the input format instead of detecting it.
func (o *Orderer) Format(f format.Format) *Orderer {
	newOrd := o.clone()
	newOrd.format = f
	return newOrd
}

// Pages specifies which pages to order (1-indexed).
// Multiple calls are cumulative.
//
// Example:
//
//	seqs, _, err := readingorder.Open("analyze.json").Pages(1, 3).Sequences()
func (o *Orderer) Pages(pages ...int) *Orderer {
	newOrd := o.clone()
	for _, p := range pages {
		if p < 1 && newOrd.err == nil {
			newOrd.err = fmt.Errorf("invalid page number %d", p)
		}
	}
	newOrd.options.pages = append(newOrd.options.pages, pages...)
	return newOrd
}

// PageRange specifies a range of pages to order (1-indexed, inclusive).
func (o *Orderer) PageRange(start, end int) *Orderer {
	newOrd := o.clone()
	if (start < 1 || end < start) && newOrd.err == nil {
		newOrd.err = fmt.Errorf("invalid page range %d-%d", start, end)
	}
	for i := start; i <= end; i++ {
		newOrd.options.pages = append(newOrd.options.pages, i)
	}
	return newOrd
}

// Sequential selects single-pass grouping on the running column mean with
// the given threshold.
//
// Example:
//
//	text, _, err := readingorder.Open("lines.json").Sequential(50).Text()
func (o *Orderer) Sequential(threshold float64) *Orderer {
	newOrd := o.clone()
	newOrd.options.custom = nil
	newOrd.options.strategy.Name = layout.StrategySequential
	newOrd.options.strategy.Threshold = threshold
	return newOrd
}

// DensityBased selects DBSCAN grouping with the given neighborhood radius.
// This is the default, with eps 120.
//
// Example:
//
//	text, _, err := readingorder.Open("words.json").DensityBased(80).Text()
func (o *Orderer) DensityBased(eps float64) *Orderer {
	newOrd := o.clone()
	newOrd.options.custom = nil
	newOrd.options.strategy.Name = layout.StrategyDensityBased
	newOrd.options.strategy.Eps = eps
	return newOrd
}

// MinSamples sets how many neighbors make a DBSCAN core point.
// Values above 1 let isolated detections become noise and be reassigned.
func (o *Orderer) MinSamples(n int) *Orderer {
	newOrd := o.clone()
	newOrd.options.strategy.MinSamples = n
	return newOrd
}

// MaxReassignDistance caps how far a noise detection may move to join a
// column; farther ones start their own column. Zero disables the cap.
func (o *Orderer) MaxReassignDistance(d float64) *Orderer {
	newOrd := o.clone()
	newOrd.options.strategy.MaxReassignDistance = d
	return newOrd
}

// Strategy uses a caller supplied clustering strategy, overriding the
// strategy methods above.
func (o *Orderer) Strategy(s layout.ClusteringStrategy) *Orderer {
	newOrd := o.clone()
	newOrd.options.custom = s
	return newOrd
}

// WithStrategyConfig replaces the clustering configuration wholesale.
func (o *Orderer) WithStrategyConfig(cfg layout.StrategyConfig) *Orderer {
	newOrd := o.clone()
	newOrd.options.custom = nil
	newOrd.options.strategy = cfg
	return newOrd
}

// NormalizeText composes text to NFC and folds fullwidth ASCII before
// ordering.
func (o *Orderer) NormalizeText() *Orderer {
	newOrd := o.clone()
	newOrd.options.normalizeText = true
	return newOrd
}

// WithLogger sends dropped-detection warnings and debug summaries to l.
func (o *Orderer) WithLogger(l zerolog.Logger) *Orderer {
	newOrd := o.clone()
	newOrd.options.logger = l
	return newOrd
}

// ============================================================================
// Terminal Operations (execute ordering and return results)
// ============================================================================

// PageCount returns the number of pages in the input.
func (o *Orderer) PageCount() (int, error) {
	if o.err != nil {
		return 0, o.err
	}
	doc, err := o.document()
	if err != nil {
		return 0, err
	}
	return doc.PageCount(), nil
}

// Document returns the parsed input.
func (o *Orderer) Document() (*model.Document, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.document()
}

// Sequences orders every selected page independently.
// Coordinates of different pages are never compared.
func (o *Orderer) Sequences() ([]PageSequence, []Warning, error) {
	if o.err != nil {
		return nil, nil, o.err
	}

	strategy, err := o.options.clusteringStrategy()
	if err != nil {
		return nil, nil, err
	}

	doc, err := o.document()
	if err != nil {
		return nil, nil, err
	}

	pages, err := o.resolvePages(doc)
	if err != nil {
		return nil, nil, err
	}

	var warnings []Warning
	out := make([]PageSequence, 0, len(pages))
	for _, page := range pages {
		detector := layout.NewReadingOrderDetectorWithConfig(layout.ReadingOrderConfig{
			Strategy: strategy,
			Logger:   o.options.logger.With().Int("page", page.Number).Logger(),
		})

		seq, err := detector.Detect(page.Detections)
		if err != nil {
			return nil, nil, fmt.Errorf("page %d: %w", page.Number, err)
		}

		warnings = append(warnings, pageWarnings(page.Number, seq)...)
		out = append(out, PageSequence{Page: page.Number, Sequence: seq})
	}

	return out, warnings, nil
}

// Sequence orders a single page. The input must hold exactly one page, or
// exactly one must be selected with Pages.
//
// Example:
//
//	seq, warnings, err := readingorder.Open("page_res.json").Sequence()
func (o *Orderer) Sequence() (*layout.ReadingSequence, []Warning, error) {
	seqs, warnings, err := o.Sequences()
	if err != nil {
		return nil, nil, err
	}
	if len(seqs) != 1 {
		return nil, nil, fmt.Errorf("input has %d pages; select one with Pages or use Sequences", len(seqs))
	}
	return seqs[0].Sequence, warnings, nil
}

// Results returns the serializable form of every selected page.
func (o *Orderer) Results() ([]model.Result, []Warning, error) {
	seqs, warnings, err := o.Sequences()
	if err != nil {
		return nil, nil, err
	}
	results := make([]model.Result, len(seqs))
	for i, ps := range seqs {
		results[i] = ps.Sequence.Result()
		results[i].Page = ps.Page
	}
	return results, warnings, nil
}

// Text returns the full text of every selected page in reading order,
// pages separated by a blank line.
//
// Example:
//
//	text, warnings, err := readingorder.Open("analyze.json").Text()
func (o *Orderer) Text() (string, []Warning, error) {
	seqs, warnings, err := o.Sequences()
	if err != nil {
		return "", nil, err
	}
	texts := make([]string, len(seqs))
	for i, ps := range seqs {
		texts[i] = ps.Sequence.FullText()
	}
	return strings.Join(texts, "\n\n"), warnings, nil
}

// Lines returns one string per column of every selected page.
func (o *Orderer) Lines() ([]string, []Warning, error) {
	seqs, warnings, err := o.Sequences()
	if err != nil {
		return nil, nil, err
	}
	var lines []string
	for _, ps := range seqs {
		lines = append(lines, ps.Sequence.Lines()...)
	}
	return lines, warnings, nil
}

// ============================================================================
// Helpers
// ============================================================================

// resolvePages returns the selected pages in page order.
func (o *Orderer) resolvePages(doc *model.Document) ([]*model.Page, error) {
	pageCount := doc.PageCount()

	// If no pages specified, use all pages
	if len(o.options.pages) == 0 {
		return doc.Pages, nil
	}

	seen := make(map[int]bool)
	var numbers []int
	for _, p := range o.options.pages {
		if doc.GetPage(p) == nil {
			return nil, fmt.Errorf("page %d out of range (1-%d)", p, pageCount)
		}
		if !seen[p] {
			seen[p] = true
			numbers = append(numbers, p)
		}
	}

	// Sort pages in order
	sort.Ints(numbers)
	pages := make([]*model.Page, len(numbers))
	for i, n := range numbers {
		pages[i] = doc.GetPage(n)
	}
	return pages, nil
}

func pageWarnings(page int, seq *layout.ReadingSequence) []Warning {
	var warnings []Warning
	for _, err := range seq.DroppedErrors() {
		warnings = append(warnings, Warning{
			Type:    WarningDroppedDetection,
			Page:    page,
			Message: err.Error(),
		})
	}
	if seq.IsEmpty() {
		warnings = append(warnings, Warning{
			Type:    WarningEmptyPage,
			Page:    page,
			Message: "no detections to order",
		})
		return warnings
	}
	if avg := seq.OverallAvgConfidence(); avg < LowConfidenceThreshold {
		warnings = append(warnings, Warning{
			Type:    WarningLowConfidence,
			Page:    page,
			Message: fmt.Sprintf("average confidence %.2f", avg),
		})
	}
	if text.DetectOrientation(seq.Elements()) == text.OrientationHorizontal {
		warnings = append(warnings, Warning{
			Type:    WarningHorizontalText,
			Page:    page,
			Message: "most multi-glyph detections are wider than tall",
		})
	}
	if ratio, ok := text.CJKRatio(seq.FullText()); ok && ratio < MinCJKRatio {
		warnings = append(warnings, Warning{
			Type:    WarningNonCJK,
			Page:    page,
			Message: fmt.Sprintf("%.0f%% of letters are CJK", ratio*100),
		})
	}
	return warnings
}
