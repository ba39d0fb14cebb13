package model

import (
	"math"

	"github.com/rs/zerolog"
)

// Element is a normalized OCR text unit. It is immutable: every field is
// computed once by NewElement and only exposed through accessors.
type Element struct {
	text       string
	confidence float64
	polygon    []Point
	center     Point
	bbox       BBox
	index      int
}

// NewElement normalizes a flat coordinate list [x1, y1, x2, y2, ...] into an
// Element. The center is the arithmetic mean of the x and y coordinates and
// the bounding box is their elementwise min/max.
//
// index is the detection's position in the backend's native order; it is
// the final tie-breaker wherever geometry alone cannot order two elements.
func NewElement(index int, text string, confidence float64, coords []float64) (*Element, error) {
	if len(coords)%2 != 0 {
		return nil, invalidGeometry(index, "odd coordinate count %d", len(coords))
	}
	if len(coords) < 4 {
		return nil, invalidGeometry(index, "need at least 2 points, got %d", len(coords)/2)
	}

	points := make([]Point, 0, len(coords)/2)
	var sumX, sumY float64
	for i := 0; i < len(coords); i += 2 {
		x, y := coords[i], coords[i+1]
		if !isFinite(x) || !isFinite(y) {
			return nil, invalidGeometry(index, "non-finite coordinate at point %d", i/2)
		}
		points = append(points, Point{X: x, Y: y})
		sumX += x
		sumY += y
	}
	n := float64(len(points))

	return &Element{
		text:       text,
		confidence: clampConfidence(confidence),
		polygon:    points,
		center:     Point{X: sumX / n, Y: sumY / n},
		bbox:       BBoxOf(points),
		index:      index,
	}, nil
}

// NewElementFromRect normalizes an (x, y, w, h) rectangle by expanding it to
// its four corners.
func NewElementFromRect(index int, text string, confidence float64, rect BBox) (*Element, error) {
	if rect.Width < 0 || rect.Height < 0 {
		return nil, invalidGeometry(index, "negative rectangle size %gx%g", rect.Width, rect.Height)
	}
	corners := rect.Corners()
	coords := make([]float64, 0, 8)
	for _, c := range corners {
		coords = append(coords, c.X, c.Y)
	}
	return NewElement(index, text, confidence, coords)
}

// FromDetection normalizes a raw detection, using its polygon when present
// and its rectangle otherwise.
func FromDetection(index int, d Detection) (*Element, error) {
	switch {
	case len(d.Polygon) > 0:
		return NewElement(index, d.Text, d.Confidence, d.Polygon)
	case d.Rect != nil:
		return NewElementFromRect(index, d.Text, d.Confidence, *d.Rect)
	default:
		return nil, invalidGeometry(index, "no polygon or rectangle")
	}
}

// NormalizeAll normalizes one document's detections. Malformed detections
// are logged at warn level and skipped; the rest of the page is kept. The
// returned errors are the rejected detections, in input order.
func NormalizeAll(dets []Detection, logger zerolog.Logger) ([]*Element, []error) {
	elements := make([]*Element, 0, len(dets))
	var dropped []error
	for i, d := range dets {
		elem, err := FromDetection(i, d)
		if err != nil {
			logger.Warn().
				Err(err).
				Int("index", i).
				Str("text", d.Text).
				Msg("Dropping detection with invalid geometry")
			dropped = append(dropped, err)
			continue
		}
		elements = append(elements, elem)
	}
	return elements, dropped
}

// Text returns the recognized text (possibly empty).
func (e *Element) Text() string { return e.text }

// Confidence returns the recognition confidence in [0, 1].
func (e *Element) Confidence() float64 { return e.confidence }

// Polygon returns a copy of the polygon points.
func (e *Element) Polygon() []Point {
	out := make([]Point, len(e.polygon))
	copy(out, e.polygon)
	return out
}

// FlatPolygon returns the polygon as [x1, y1, x2, y2, ...].
func (e *Element) FlatPolygon() []float64 {
	out := make([]float64, 0, len(e.polygon)*2)
	for _, p := range e.polygon {
		out = append(out, p.X, p.Y)
	}
	return out
}

// Center returns the mean of the polygon coordinates.
func (e *Element) Center() Point { return e.center }

// CenterX is shorthand for Center().X.
func (e *Element) CenterX() float64 { return e.center.X }

// CenterY is shorthand for Center().Y.
func (e *Element) CenterY() float64 { return e.center.Y }

// BBox returns the bounding box of the polygon.
func (e *Element) BBox() BBox { return e.bbox }

// Index returns the position of the source detection in input order.
func (e *Element) Index() int { return e.index }

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
