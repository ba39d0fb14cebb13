package model

// Page holds the raw detections of a single page of a backend response
type Page struct {
	Number     int         // 1-indexed page number
	Width      float64     // Page width, in Unit
	Height     float64     // Page height, in Unit
	Unit       string      // "pixel" for image backends, "inch" for some Azure responses
	Angle      float64     // Skew angle reported by the backend, in degrees
	Detections []Detection // Detections in the backend's native order
}

// NewPage creates a new page with given dimensions
func NewPage(width, height float64) *Page {
	return &Page{
		Width:      width,
		Height:     height,
		Unit:       "pixel",
		Detections: make([]Detection, 0),
	}
}

// AddDetection appends a detection, stamping it with the page number
func (p *Page) AddDetection(d Detection) {
	d.Page = p.Number
	p.Detections = append(p.Detections, d)
}

// DetectionCount returns the number of detections on the page
func (p *Page) DetectionCount() int {
	return len(p.Detections)
}
