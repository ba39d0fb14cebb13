package layout

import (
	"testing"

	"github.com/histpath/readingorder/model"
)

func TestOrderLines_TopToBottom(t *testing.T) {
	col := newColumn(0)
	col.add(makeElement(t, 0, 100, 80, "c", 1))
	col.add(makeElement(t, 1, 100, 10, "a", 1))
	col.add(makeElement(t, 2, 100, 45, "b", 1))

	OrderLines([]*Column{col})

	if col.Text() != "abc" {
		t.Errorf("expected %q, got %q", "abc", col.Text())
	}
}

func TestOrderLines_TieBreaks(t *testing.T) {
	tests := []struct {
		name  string
		elems func(t *testing.T) []*model.Element
		want  []int
	}{
		{
			name: "same y, ordered by x",
			elems: func(t *testing.T) []*model.Element {
				return []*model.Element{
					makeElement(t, 0, 120, 10, "", 1),
					makeElement(t, 1, 100, 10, "", 1),
				}
			},
			want: []int{1, 0},
		},
		{
			name: "coincident, ordered by input index",
			elems: func(t *testing.T) []*model.Element {
				return []*model.Element{
					makeElement(t, 5, 100, 10, "", 1),
					makeElement(t, 2, 100, 10, "", 1),
					makeElement(t, 9, 100, 10, "", 1),
				}
			},
			want: []int{2, 5, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := newColumn(0)
			for _, e := range tt.elems(t) {
				col.add(e)
			}

			OrderLines([]*Column{col})

			if got := columnIndexes(col); !equalInts(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOrderLines_FrozenColumnUntouched(t *testing.T) {
	col := newColumn(0)
	col.add(makeElement(t, 0, 0, 50, "b", 1))
	col.add(makeElement(t, 1, 0, 10, "a", 1))
	OrderLines([]*Column{col})

	// A second pass is a no-op
	OrderLines([]*Column{col})

	if col.Text() != "ab" {
		t.Errorf("expected %q, got %q", "ab", col.Text())
	}
}
