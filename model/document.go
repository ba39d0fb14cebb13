package model

// Document represents a complete backend response split into pages
type Document struct {
	// Source names where the detections came from (file name, "upload", ...)
	Source string

	// Backend names the OCR engine that produced the detections
	Backend string

	Pages []*Page
}

// NewDocument creates a new empty document
func NewDocument(source, backend string) *Document {
	return &Document{
		Source:  source,
		Backend: backend,
		Pages:   make([]*Page, 0),
	}
}

// AddPage adds a page to the document, numbering it when the backend did not
func (d *Document) AddPage(page *Page) {
	if page.Number == 0 {
		page.Number = len(d.Pages) + 1
	}
	for i := range page.Detections {
		page.Detections[i].Page = page.Number
	}
	d.Pages = append(d.Pages, page)
}

// GetPage returns a page by number (1-indexed)
func (d *Document) GetPage(number int) *Page {
	for _, p := range d.Pages {
		if p.Number == number {
			return p
		}
	}
	return nil
}

// PageCount returns the total number of pages
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Detections returns every detection of every page, in page order
func (d *Document) Detections() []Detection {
	var all []Detection
	for _, p := range d.Pages {
		all = append(all, p.Detections...)
	}
	return all
}
