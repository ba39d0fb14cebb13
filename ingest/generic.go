package ingest

import (
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/histpath/readingorder/model"
)

type genericEnvelope struct {
	Detections []model.Detection `json:"detections"`
}

// parseGeneric reads either a bare list of detections or an object with a
// "detections" list. Detections carrying a page number are grouped by it;
// the rest go to page 1. Pages are added in ascending number order.
func parseGeneric(data []byte, doc *model.Document) error {
	var dets []model.Detection
	if json.Get(data).ValueType() == jsoniter.ArrayValue {
		if err := json.Unmarshal(data, &dets); err != nil {
			return malformed("generic", err)
		}
	} else {
		var env genericEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return malformed("generic", err)
		}
		dets = env.Detections
	}

	pages := make(map[int]*model.Page)
	var order []int
	for _, d := range dets {
		number := d.Page
		if number < 1 {
			number = 1
		}
		page, ok := pages[number]
		if !ok {
			page = model.NewPage(0, 0)
			page.Number = number
			pages[number] = page
			order = append(order, number)
		}
		page.AddDetection(d)
	}

	if len(order) == 0 {
		doc.AddPage(model.NewPage(0, 0))
		return nil
	}
	sort.Ints(order)
	for _, number := range order {
		doc.AddPage(pages[number])
	}
	return nil
}
