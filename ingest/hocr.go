package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/histpath/readingorder/model"
)

// parseHOCR walks Tesseract hOCR output. Every ocrx_word span becomes a
// detection; ocr_page divs open a new page. Words outside any page go to
// page 1.
func parseHOCR(data []byte, doc *model.Document) error {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return malformed("hocr", fmt.Errorf("parsing HTML: %w", err))
	}

	w := &hocrWalker{doc: doc}
	if err := w.walk(root); err != nil {
		return err
	}
	if w.page != nil {
		doc.AddPage(w.page)
	}
	if doc.PageCount() == 0 {
		doc.AddPage(model.NewPage(0, 0))
	}
	return nil
}

type hocrWalker struct {
	doc  *model.Document
	page *model.Page
}

func (w *hocrWalker) walk(n *html.Node) error {
	if n.Type == html.ElementNode {
		classes := strings.Fields(getAttr(n, "class"))
		switch {
		case hasClass(classes, "ocr_page"):
			if w.page != nil {
				w.doc.AddPage(w.page)
			}
			w.page = newHOCRPage(getAttr(n, "title"))

		case hasClass(classes, "ocrx_word") || hasClass(classes, "ocr_word"):
			det, err := hocrWord(n)
			if err != nil {
				return err
			}
			if w.page == nil {
				w.page = model.NewPage(0, 0)
			}
			w.page.Detections = append(w.page.Detections, det)
			return nil
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := w.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func newHOCRPage(title string) *model.Page {
	props := parseTitle(title)
	page := model.NewPage(0, 0)
	if box, ok := props["bbox"]; ok {
		if v, err := parseFloats(box); err == nil && len(v) == 4 {
			page.Width = v[2] - v[0]
			page.Height = v[3] - v[1]
		}
	}
	if no, ok := props["ppageno"]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(no)); err == nil {
			page.Number = n + 1
		}
	}
	return page
}

// hocrWord converts one word span. A missing bbox yields a detection with
// no geometry, which normalization drops; a missing x_wconf counts as fully
// confident.
func hocrWord(n *html.Node) (model.Detection, error) {
	props := parseTitle(getAttr(n, "title"))
	det := model.Detection{
		Text:       getTextContent(n),
		Confidence: 1,
	}

	if box, ok := props["bbox"]; ok {
		v, err := parseFloats(box)
		if err != nil || len(v) != 4 {
			return det, malformed("hocr", fmt.Errorf("word %q: bad bbox %q", det.Text, box))
		}
		r := model.NewBBox(v[0], v[1], v[2]-v[0], v[3]-v[1])
		det.Rect = &r
	}

	if conf, ok := props["x_wconf"]; ok {
		c, err := strconv.ParseFloat(strings.TrimSpace(conf), 64)
		if err != nil {
			return det, malformed("hocr", fmt.Errorf("word %q: bad x_wconf %q", det.Text, conf))
		}
		det.Confidence = c / 100
	}

	return det, nil
}

// parseTitle splits an hOCR title such as "bbox 1 2 3 4; x_wconf 95" into
// property name and value.
func parseTitle(title string) map[string]string {
	props := make(map[string]string)
	for _, part := range strings.Split(title, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, _ := strings.Cut(part, " ")
		props[name] = strings.TrimSpace(value)
	}
	return props
}

func parseFloats(s string) ([]float64, error) {
	fields := strings.Fields(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(classes []string, class string) bool {
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}

// getTextContent extracts all text content from a node and its descendants.
func getTextContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.TrimSpace(sb.String())
}
