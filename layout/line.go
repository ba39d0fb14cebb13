package layout

import (
	"sort"

	"github.com/histpath/readingorder/model"
)

// OrderLines sorts the elements of every column top to bottom and freezes
// the columns. Elements at the same height are ordered by center X, then by
// input index, so the order is total even for coincident detections.
func OrderLines(columns []*Column) {
	for _, col := range columns {
		if col.frozen {
			continue
		}
		sortTopToBottom(col.elements)
		col.frozen = true
	}
}

func sortTopToBottom(elements []*model.Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		a, b := elements[i], elements[j]
		if a.CenterY() != b.CenterY() {
			return a.CenterY() < b.CenterY()
		}
		if a.CenterX() != b.CenterX() {
			return a.CenterX() < b.CenterX()
		}
		return a.Index() < b.Index()
	})
}
