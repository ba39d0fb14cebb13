package layout

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/histpath/readingorder/model"
)

// ReadingOrderConfig holds configuration for reading order detection
type ReadingOrderConfig struct {
	// Strategy groups elements into columns
	// Default: DensityBased with eps 120
	Strategy ClusteringStrategy

	// Logger receives dropped-detection warnings and per-run debug summaries
	// Default: disabled
	Logger zerolog.Logger
}

// DefaultReadingOrderConfig returns sensible default configuration
func DefaultReadingOrderConfig() ReadingOrderConfig {
	return ReadingOrderConfig{
		Strategy: DefaultDensityBased(),
		Logger:   zerolog.Nop(),
	}
}

// ReadingOrderDetector determines the reading order of a page of vertical,
// right-to-left text
type ReadingOrderDetector struct {
	config ReadingOrderConfig
}

// NewReadingOrderDetector creates a new reading order detector with default configuration
func NewReadingOrderDetector() *ReadingOrderDetector {
	return &ReadingOrderDetector{
		config: DefaultReadingOrderConfig(),
	}
}

// NewReadingOrderDetectorWithConfig creates a reading order detector with custom configuration
func NewReadingOrderDetectorWithConfig(config ReadingOrderConfig) *ReadingOrderDetector {
	if config.Strategy == nil {
		config.Strategy = DefaultDensityBased()
	}
	return &ReadingOrderDetector{
		config: config,
	}
}

// Config returns the detector's configuration
func (d *ReadingOrderDetector) Config() ReadingOrderConfig {
	return d.config
}

// Detect normalizes raw detections and returns them in reading order.
// Detections with invalid geometry are logged and skipped; they are counted
// in the sequence's Dropped total. Only configuration errors are returned.
func (d *ReadingOrderDetector) Detect(detections []model.Detection) (*ReadingSequence, error) {
	if err := d.config.Strategy.Validate(); err != nil {
		return nil, err
	}

	elements, dropped := model.NormalizeAll(detections, d.config.Logger)

	seq, err := d.DetectElements(elements)
	if err != nil {
		return nil, err
	}
	seq.dropped = dropped
	return seq, nil
}

// DetectElements orders already normalized elements
func (d *ReadingOrderDetector) DetectElements(elements []*model.Element) (*ReadingSequence, error) {
	// Step 1: Group elements into columns
	columns, err := d.config.Strategy.Cluster(elements)
	if err != nil {
		return nil, err
	}

	// Step 2: Top to bottom within each column
	OrderLines(columns)

	// Step 3: Rightmost column first
	columns = OrderColumns(columns)

	// Step 4: Flatten
	seq := Assemble(columns)

	d.config.Logger.Debug().
		Str("strategy", d.config.Strategy.Name()).
		Int("elements", seq.ElementCount()).
		Int("columns", len(seq.columns)).
		Float64("avg_confidence", seq.overall).
		Msg("Reconstructed reading order")

	return seq, nil
}

// ReadingSequence is the final, immutable output of the pipeline: columns
// ordered right-to-left, each ordered top-to-bottom, with the flattened text
// and confidence statistics.
type ReadingSequence struct {
	columns  []*Column
	fullText string
	overall  float64
	stats    model.ConfidenceStats
	dropped  []error
}

// Assemble flattens ordered columns into a ReadingSequence. Text fields are
// concatenated with no separator: vertical CJK text has no inter-glyph
// spacing convention.
func Assemble(columns []*Column) *ReadingSequence {
	var sb strings.Builder
	var all []*model.Element
	for _, col := range columns {
		for _, e := range col.elements {
			sb.WriteString(e.Text())
			all = append(all, e)
		}
	}

	ordered := make([]*Column, len(columns))
	copy(ordered, columns)

	return &ReadingSequence{
		columns:  ordered,
		fullText: sb.String(),
		overall:  AverageConfidence(all),
		stats:    ComputeStats(all),
	}
}

// FullText returns the text of all elements in reading order
func (s *ReadingSequence) FullText() string {
	return s.fullText
}

// Columns returns the ordered columns
func (s *ReadingSequence) Columns() []*Column {
	out := make([]*Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// ColumnCount returns the number of columns
func (s *ReadingSequence) ColumnCount() int {
	return len(s.columns)
}

// Elements returns every element in reading order
func (s *ReadingSequence) Elements() []*model.Element {
	var out []*model.Element
	for _, col := range s.columns {
		out = append(out, col.elements...)
	}
	return out
}

// ElementCount returns the total number of elements across columns
func (s *ReadingSequence) ElementCount() int {
	n := 0
	for _, col := range s.columns {
		n += len(col.elements)
	}
	return n
}

// OverallAvgConfidence returns the mean confidence over all elements
func (s *ReadingSequence) OverallAvgConfidence() float64 {
	return s.overall
}

// Stats returns confidence statistics over all elements
func (s *ReadingSequence) Stats() model.ConfidenceStats {
	return s.stats
}

// Dropped returns the number of detections skipped for invalid geometry
func (s *ReadingSequence) Dropped() int {
	return len(s.dropped)
}

// DroppedErrors returns the errors of the skipped detections, in input order
func (s *ReadingSequence) DroppedErrors() []error {
	out := make([]error, len(s.dropped))
	copy(out, s.dropped)
	return out
}

// Lines returns the text of each column in reading order
func (s *ReadingSequence) Lines() []string {
	lines := make([]string, len(s.columns))
	for i, col := range s.columns {
		lines[i] = col.Text()
	}
	return lines
}

// JoinedText returns the column texts joined by sep, for display where a
// break per column is wanted
func (s *ReadingSequence) JoinedText(sep string) string {
	return strings.Join(s.Lines(), sep)
}

// IsEmpty returns true if the sequence holds no elements
func (s *ReadingSequence) IsEmpty() bool {
	return s.ElementCount() == 0
}

// Result converts the sequence into its serializable form
func (s *ReadingSequence) Result() model.Result {
	res := model.Result{
		FullText:             s.fullText,
		Columns:              make([]model.ResultColumn, 0, len(s.columns)),
		OverallAvgConfidence: s.overall,
		ElementCount:         s.ElementCount(),
		Dropped:              len(s.dropped),
		Stats:                s.stats,
	}

	for i, col := range s.columns {
		rc := model.ResultColumn{
			LineNumber:    i + 1,
			Text:          col.Text(),
			Elements:      make([]model.ResultElement, 0, len(col.elements)),
			MeanX:         col.MeanX(),
			AvgConfidence: col.AvgConfidence(),
			BBox:          col.BBox(),
		}
		for _, e := range col.elements {
			rc.Elements = append(rc.Elements, model.ResultElement{
				Text:       e.Text(),
				Confidence: e.Confidence(),
				Polygon:    e.FlatPolygon(),
				BBox:       e.BBox(),
			})
		}
		res.Columns = append(res.Columns, rc)
	}

	return res
}

// MarshalJSON implements json.Marshaler using the Result form
func (s *ReadingSequence) MarshalJSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(s.Result())
}
