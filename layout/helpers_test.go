package layout

import (
	"testing"

	"github.com/histpath/readingorder/model"
)

// makeElement builds a 10x10 element centered on (cx, cy).
func makeElement(t *testing.T, index int, cx, cy float64, txt string, conf float64) *model.Element {
	t.Helper()
	elem, err := model.NewElementFromRect(index, txt, conf, model.NewBBox(cx-5, cy-5, 10, 10))
	if err != nil {
		t.Fatalf("makeElement(%d): %v", index, err)
	}
	return elem
}

// makeDetection builds a raw 4-point detection centered on (cx, cy).
func makeDetection(cx, cy float64, txt string, conf float64) model.Detection {
	return model.Detection{
		Text:       txt,
		Confidence: conf,
		Polygon: []float64{
			cx - 5, cy - 5,
			cx + 5, cy - 5,
			cx + 5, cy + 5,
			cx - 5, cy + 5,
		},
	}
}

// elementsAtX builds one element per x value, all at the same height.
func elementsAtX(t *testing.T, xs ...float64) []*model.Element {
	t.Helper()
	elems := make([]*model.Element, len(xs))
	for i, x := range xs {
		elems[i] = makeElement(t, i, x, 0, "", 1)
	}
	return elems
}

func columnIndexes(col *Column) []int {
	var out []int
	for _, e := range col.Elements() {
		out = append(out, e.Index())
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
