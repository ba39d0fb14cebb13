package model

// Detection is one raw record handed over by an OCR backend, before
// normalization. Exactly one of Polygon or Rect is expected to be set;
// Polygon wins when both are.
type Detection struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`

	// Polygon is a flat coordinate list [x1, y1, x2, y2, ...].
	Polygon []float64 `json:"polygon,omitempty"`

	// Rect is an (x, y, w, h) rectangle for backends that only report boxes.
	Rect *BBox `json:"rect,omitempty"`

	// Page is the 1-indexed page the detection came from (0 when unknown).
	Page int `json:"page,omitempty"`
}

// HasGeometry reports whether the detection carries any geometry at all.
func (d Detection) HasGeometry() bool {
	return len(d.Polygon) > 0 || d.Rect != nil
}
