package model

// Result is the serializable form of a reading sequence: columns ordered
// right-to-left, each with its elements ordered top-to-bottom.
type Result struct {
	FullText             string          `json:"full_text"`
	Columns              []ResultColumn  `json:"columns"`
	OverallAvgConfidence float64         `json:"overall_avg_confidence"`
	ElementCount         int             `json:"element_count"`
	Dropped              int             `json:"dropped"`
	Stats                ConfidenceStats `json:"stats"`
	Page                 int             `json:"page,omitempty"`
}

// ResultColumn is one vertical reading line.
type ResultColumn struct {
	LineNumber    int             `json:"line_number"`
	Text          string          `json:"text"`
	Elements      []ResultElement `json:"elements"`
	MeanX         float64         `json:"mean_x"`
	AvgConfidence float64         `json:"avg_confidence"`
	BBox          BBox            `json:"bbox"`
}

// ResultElement is one ordered text unit with its original geometry.
type ResultElement struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Polygon    []float64 `json:"polygon"`
	BBox       BBox      `json:"bbox"`
}

// ConfidenceStats summarizes the confidences of a set of elements.
// Every field is zero for an empty set.
type ConfidenceStats struct {
	Avg    float64 `json:"avg"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std"`
	Count  int     `json:"count"`
}
