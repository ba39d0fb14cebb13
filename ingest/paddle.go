package ingest

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/histpath/readingorder/model"
)

type paddleResult struct {
	InputPath string        `json:"input_path"`
	PageIndex *int          `json:"page_index"`
	RecTexts  []string      `json:"rec_texts"`
	RecScores []float64     `json:"rec_scores"`
	RecPolys  [][][]float64 `json:"rec_polys"`
	RecBoxes  [][]float64   `json:"rec_boxes"`
}

type paddleEnvelope struct {
	Res *paddleResult `json:"res"`
	paddleResult
}

// parsePaddle reads a PP-OCR result file. Polygons are preferred over axis
// aligned boxes when both are present.
func parsePaddle(data []byte, doc *model.Document) error {
	var env paddleEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return malformed("paddle", err)
	}

	res := env.paddleResult
	if env.Res != nil {
		res = *env.Res
	}

	if len(res.RecScores) != len(res.RecTexts) {
		return malformed("paddle", fmt.Errorf("%d texts but %d scores", len(res.RecTexts), len(res.RecScores)))
	}

	page := model.NewPage(0, 0)
	if res.PageIndex != nil {
		page.Number = *res.PageIndex + 1
	}

	usePolys := len(res.RecPolys) == len(res.RecTexts)
	useBoxes := !usePolys && len(res.RecBoxes) == len(res.RecTexts)

	for i, text := range res.RecTexts {
		det := model.Detection{Text: text, Confidence: res.RecScores[i]}
		switch {
		case usePolys:
			det.Polygon = flattenPoints(res.RecPolys[i])
		case useBoxes:
			det.Rect = boxToRect(res.RecBoxes[i])
		}
		page.Detections = append(page.Detections, det)
	}

	doc.AddPage(page)
	return nil
}

// parsePaddleLegacy reads the classic [[box, [text, score]], ...] list, or
// a list of such lists with one entry per page. Pages with no text are null.
func parsePaddleLegacy(data []byte, doc *model.Document) error {
	paged := isPagedLegacy(data)

	var raw [][]jsoniter.RawMessage
	if paged {
		var pages [][][]jsoniter.RawMessage
		if err := json.Unmarshal(data, &pages); err != nil {
			return malformed("paddle-legacy", err)
		}
		for _, lines := range pages {
			page, err := legacyPage(lines)
			if err != nil {
				return err
			}
			doc.AddPage(page)
		}
		return nil
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return malformed("paddle-legacy", err)
	}
	page, err := legacyPage(raw)
	if err != nil {
		return err
	}
	doc.AddPage(page)
	return nil
}

// isPagedLegacy tells a list of pages from a single page by nesting depth:
// a page's first coordinate is a number, a document's is a point.
func isPagedLegacy(data []byte) bool {
	switch json.Get(data, 0).ValueType() {
	case jsoniter.NilValue:
		return true
	case jsoniter.ArrayValue:
		if json.Get(data, 0, 0).ValueType() == jsoniter.InvalidValue {
			return true // empty first page
		}
		return json.Get(data, 0, 0, 0, 0).ValueType() == jsoniter.ArrayValue
	}
	return false
}

func legacyPage(lines [][]jsoniter.RawMessage) (*model.Page, error) {
	page := model.NewPage(0, 0)
	for i, line := range lines {
		if len(line) < 2 {
			return nil, malformed("paddle-legacy", fmt.Errorf("line %d: expected [box, [text, score]]", i))
		}

		var box [][]float64
		if err := json.Unmarshal(line[0], &box); err != nil {
			return nil, malformed("paddle-legacy", fmt.Errorf("line %d box: %v", i, err))
		}

		var info []interface{}
		if err := json.Unmarshal(line[1], &info); err != nil || len(info) < 2 {
			return nil, malformed("paddle-legacy", fmt.Errorf("line %d: expected [text, score]", i))
		}
		text, ok := info[0].(string)
		if !ok {
			return nil, malformed("paddle-legacy", fmt.Errorf("line %d: text is not a string", i))
		}
		score, ok := info[1].(float64)
		if !ok {
			return nil, malformed("paddle-legacy", fmt.Errorf("line %d: score is not a number", i))
		}

		page.Detections = append(page.Detections, model.Detection{
			Text:       text,
			Confidence: score,
			Polygon:    flattenPoints(box),
		})
	}
	return page, nil
}

// flattenPoints turns [[x, y], ...] into [x, y, ...]. Malformed points are
// kept as-is so normalization can reject them.
func flattenPoints(points [][]float64) []float64 {
	flat := make([]float64, 0, len(points)*2)
	for _, p := range points {
		flat = append(flat, p...)
	}
	return flat
}

// boxToRect converts [x1, y1, x2, y2] into a rectangle. Any other length
// yields no geometry.
func boxToRect(box []float64) *model.BBox {
	if len(box) != 4 {
		return nil
	}
	r := model.NewBBox(box[0], box[1], box[2]-box[0], box[3]-box[1])
	return &r
}
