package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/histpath/readingorder/model"
)

// ColumnTieEpsilon is the largest MeanX difference at which two columns are
// considered to sit at the same position.
const ColumnTieEpsilon = 1e-9

// Column is one vertical reading line: an ordered group of elements and the
// mean of their center X. The clustering and ordering stages own a column
// while it is built; after OrderLines it is frozen.
type Column struct {
	elements []*model.Element
	sumX     float64
	id       int
	frozen   bool
}

func newColumn(id int) *Column {
	return &Column{id: id}
}

// add appends an element and keeps the running sum behind MeanX current.
func (c *Column) add(e *model.Element) {
	if c.frozen {
		panic("layout: add to frozen column")
	}
	c.elements = append(c.elements, e)
	c.sumX += e.CenterX()
}

// ID returns the column's creation index within its clustering run.
func (c *Column) ID() int {
	return c.id
}

// Len returns the number of elements in the column.
func (c *Column) Len() int {
	return len(c.elements)
}

// MeanX returns the mean center X of the column's elements.
func (c *Column) MeanX() float64 {
	if len(c.elements) == 0 {
		return 0
	}
	return c.sumX / float64(len(c.elements))
}

// Elements returns the column's elements in their current order.
func (c *Column) Elements() []*model.Element {
	out := make([]*model.Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Frozen reports whether line ordering has completed for this column.
func (c *Column) Frozen() bool {
	return c.frozen
}

// Text concatenates the text of the column's elements with no separator.
func (c *Column) Text() string {
	var sb strings.Builder
	for _, e := range c.elements {
		sb.WriteString(e.Text())
	}
	return sb.String()
}

// AvgConfidence returns the mean confidence of the column's elements.
func (c *Column) AvgConfidence() float64 {
	return AverageConfidence(c.elements)
}

// BBox returns the union of the element bounding boxes.
func (c *Column) BBox() model.BBox {
	if len(c.elements) == 0 {
		return model.BBox{}
	}
	box := c.elements[0].BBox()
	for _, e := range c.elements[1:] {
		box = box.Union(e.BBox())
	}
	return box
}

// distance returns how far x lies from the column's mean.
func (c *Column) distance(x float64) float64 {
	return math.Abs(x - c.MeanX())
}

// OrderColumns returns the columns sorted right-to-left: descending MeanX,
// with columns closer than ColumnTieEpsilon kept in creation order.
func OrderColumns(columns []*Column) []*Column {
	ordered := make([]*Column, len(columns))
	copy(ordered, columns)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if math.Abs(a.MeanX()-b.MeanX()) >= ColumnTieEpsilon {
			return a.MeanX() > b.MeanX()
		}
		return a.id < b.id
	})

	return ordered
}

// sortedByX returns a copy of elements sorted by ascending center X, ties by
// input index.
func sortedByX(elements []*model.Element) []*model.Element {
	sorted := make([]*model.Element, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CenterX() != sorted[j].CenterX() {
			return sorted[i].CenterX() < sorted[j].CenterX()
		}
		return sorted[i].Index() < sorted[j].Index()
	})
	return sorted
}
