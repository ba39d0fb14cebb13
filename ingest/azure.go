package ingest

import (
	jsoniter "github.com/json-iterator/go"

	"github.com/histpath/readingorder/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type azureResponse struct {
	Status        string       `json:"status"`
	AnalyzeResult *azureResult `json:"analyzeResult"`
	Pages         []azurePage  `json:"pages"`
}

type azureResult struct {
	Pages []azurePage `json:"pages"`
}

type azurePage struct {
	PageNumber int         `json:"pageNumber"`
	Angle      float64     `json:"angle"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Unit       string      `json:"unit"`
	Words      []azureWord `json:"words"`
}

type azureWord struct {
	Content    string    `json:"content"`
	Polygon    []float64 `json:"polygon"`
	Confidence *float64  `json:"confidence"`
}

// parseAzure reads an analyze result, either wrapped in the operation
// envelope or bare. Words without a confidence count as fully confident.
func parseAzure(data []byte, doc *model.Document) error {
	var resp azureResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return malformed("azure", err)
	}

	pages := resp.Pages
	if resp.AnalyzeResult != nil {
		pages = resp.AnalyzeResult.Pages
	}

	for _, ap := range pages {
		page := model.NewPage(ap.Width, ap.Height)
		page.Number = ap.PageNumber
		page.Angle = ap.Angle
		if ap.Unit != "" {
			page.Unit = ap.Unit
		}

		for _, w := range ap.Words {
			conf := 1.0
			if w.Confidence != nil {
				conf = *w.Confidence
			}
			page.Detections = append(page.Detections, model.Detection{
				Text:       w.Content,
				Confidence: conf,
				Polygon:    w.Polygon,
			})
		}
		doc.AddPage(page)
	}
	return nil
}
