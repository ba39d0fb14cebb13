package readingorder

import (
	"fmt"
	"strings"
)

// WarningType classifies a non-fatal issue found while ordering.
type WarningType int

const (
	// WarningDroppedDetection means a detection had unusable geometry and
	// was skipped.
	WarningDroppedDetection WarningType = iota
	// WarningLowConfidence means a page's average confidence is below
	// LowConfidenceThreshold.
	WarningLowConfidence
	// WarningEmptyPage means a page produced no elements.
	WarningEmptyPage
	// WarningHorizontalText means the page's lines run horizontally, so
	// right-to-left column order does not apply.
	WarningHorizontalText
	// WarningNonCJK means fewer than MinCJKRatio of the page's letters are
	// Han, Kana or Hangul.
	WarningNonCJK
)

// String returns the string representation of the warning type.
func (t WarningType) String() string {
	switch t {
	case WarningDroppedDetection:
		return "dropped detection"
	case WarningLowConfidence:
		return "low confidence"
	case WarningEmptyPage:
		return "empty page"
	case WarningHorizontalText:
		return "horizontal text"
	case WarningNonCJK:
		return "non-CJK text"
	default:
		return "unknown"
	}
}

// Warning is a non-fatal issue: ordering succeeded but the result may be
// incomplete or unreliable.
type Warning struct {
	Type    WarningType
	Page    int // 1-indexed, 0 when not page specific
	Message string
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	if w.Page > 0 {
		return fmt.Sprintf("page %d: %s: %s", w.Page, w.Type, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Type, w.Message)
}

// FormatWarnings renders warnings one per line.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, len(warnings))
	for i, w := range warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
