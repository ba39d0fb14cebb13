package model

import "math"

// Point is a position in image coordinates: origin top-left, Y down.
type Point struct {
	X, Y float64
}

// BBox is an axis-aligned box. It doubles as the (x, y, w, h) rectangle
// geometry reported by box-only backends.
type BBox struct {
	X      float64 `json:"x"` // Left
	Y      float64 `json:"y"` // Top
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewBBox returns the box with top-left corner (x, y).
func NewBBox(x, y, width, height float64) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// BBoxOf returns the smallest box enclosing all points.
// An empty slice yields the zero box.
func BBoxOf(points []Point) BBox {
	if len(points) == 0 {
		return BBox{}
	}
	minX, minY := points[0].X, points[0].Y
	maxX, maxY := minX, minY
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (b BBox) Left() float64   { return b.X }
func (b BBox) Right() float64  { return b.X + b.Width }
func (b BBox) Top() float64    { return b.Y }
func (b BBox) Bottom() float64 { return b.Y + b.Height }

// Center returns the midpoint of the box. For a polygon element this can
// differ from the element's center, which is the mean of its vertices.
func (b BBox) Center() Point {
	return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Corners returns the four corners clockwise from the top-left.
func (b BBox) Corners() []Point {
	return []Point{
		{b.Left(), b.Top()},
		{b.Right(), b.Top()},
		{b.Right(), b.Bottom()},
		{b.Left(), b.Bottom()},
	}
}

// Union returns the smallest box enclosing b and other.
func (b BBox) Union(other BBox) BBox {
	x := math.Min(b.Left(), other.Left())
	y := math.Min(b.Top(), other.Top())
	return BBox{
		X:      x,
		Y:      y,
		Width:  math.Max(b.Right(), other.Right()) - x,
		Height: math.Max(b.Bottom(), other.Bottom()) - y,
	}
}

// Elongation returns height over width: above 1 for a vertical run of
// glyphs, below 1 for a horizontal one. A zero-width box with positive height
// is +Inf; a degenerate box is 1.
func (b BBox) Elongation() float64 {
	switch {
	case b.Width > 0:
		return b.Height / b.Width
	case b.Height > 0:
		return math.Inf(1)
	default:
		return 1
	}
}
