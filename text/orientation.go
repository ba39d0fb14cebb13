package text

import (
	"unicode/utf8"

	"github.com/histpath/readingorder/model"
)

// Orientation is the writing direction of a page.
type Orientation int

const (
	// OrientationUnknown means no element was decisive.
	OrientationUnknown Orientation = iota
	OrientationVertical
	OrientationHorizontal
)

// String returns the lower-case orientation name.
func (o Orientation) String() string {
	switch o {
	case OrientationVertical:
		return "vertical"
	case OrientationHorizontal:
		return "horizontal"
	default:
		return "unknown"
	}
}

// elongation is how much longer one side must be than the other for an
// element to vote.
const elongation = 1.5

// DetectOrientation returns the majority orientation of the multi-glyph
// elements. A tie is OrientationUnknown.
func DetectOrientation(elements []*model.Element) Orientation {
	vertical, horizontal := 0, 0
	for _, e := range elements {
		if utf8.RuneCountInString(e.Text()) < 2 {
			continue
		}
		switch r := e.BBox().Elongation(); {
		case r > elongation:
			vertical++
		case r < 1/elongation:
			horizontal++
		}
	}

	switch {
	case vertical > horizontal:
		return OrientationVertical
	case horizontal > vertical:
		return OrientationHorizontal
	default:
		return OrientationUnknown
	}
}
