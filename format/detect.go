// Package format identifies the OCR result formats understood by the ingest
// package.
package format

import (
	"bytes"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Format represents a supported detection file format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// AzureJSON indicates an Azure Document Intelligence analyze result.
	AzureJSON
	// PaddleJSON indicates a PP-OCR result file with rec_texts/rec_scores.
	PaddleJSON
	// PaddleLegacy indicates the classic PaddleOCR [[box, [text, score]]] list.
	PaddleLegacy
	// HOCR indicates Tesseract hOCR output.
	HOCR
	// Generic indicates a plain list of {text, confidence, polygon|rect}.
	Generic
	// Image indicates a raster page scan (PNG, JPEG, TIFF, BMP, WebP).
	Image
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case AzureJSON:
		return "azure"
	case PaddleJSON:
		return "paddle"
	case PaddleLegacy:
		return "paddle-legacy"
	case HOCR:
		return "hocr"
	case Generic:
		return "generic"
	case Image:
		return "image"
	default:
		return "unknown"
	}
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case AzureJSON, PaddleJSON, PaddleLegacy, Generic:
		return ".json"
	case HOCR:
		return ".hocr"
	case Image:
		return ".png"
	default:
		return ""
	}
}

// IsDetections reports whether the format carries OCR detections (as
// opposed to an image that still needs recognition).
func (f Format) IsDetections() bool {
	switch f {
	case AzureJSON, PaddleJSON, PaddleLegacy, HOCR, Generic:
		return true
	default:
		return false
	}
}

// Parse converts a format name, as returned by String, back into a Format.
// Matching is case-insensitive; unrecognized names return Unknown.
func Parse(name string) Format {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "azure", "azure-json", "docintel":
		return AzureJSON
	case "paddle", "paddle-json", "ppocr":
		return PaddleJSON
	case "paddle-legacy", "legacy":
		return PaddleLegacy
	case "hocr":
		return HOCR
	case "generic", "json":
		return Generic
	case "image":
		return Image
	default:
		return Unknown
	}
}

// Detect determines file format from filename extension. JSON files return
// Unknown because their flavor lives in the content; use Sniff for those.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".hocr", ".html", ".htm", ".xhtml":
		return HOCR
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".webp":
		return Image
	default:
		return Unknown
	}
}

// DetectFile combines extension and content detection. The extension wins
// when it is conclusive.
func DetectFile(filename string, data []byte) Format {
	if f := Detect(filename); f != Unknown {
		return f
	}
	return Sniff(data)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Sniff inspects content to determine format.
// Returns Unknown if nothing matches.
func Sniff(data []byte) Format {
	if detectImageMagic(data) {
		return Image
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return Unknown
	}

	switch data[0] {
	case '<':
		if detectHOCRMagic(data) {
			return HOCR
		}
		return Unknown
	case '{':
		return sniffObject(data)
	case '[':
		return sniffArray(data)
	default:
		return Unknown
	}
}

// detectImageMagic checks the leading bytes of the common raster formats.
func detectImageMagic(data []byte) bool {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return true
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return true
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return true
	case bytes.HasPrefix(data, []byte("BM")) && len(data) > 14:
		return true
	case len(data) >= 12 && bytes.HasPrefix(data, []byte("RIFF")) && string(data[8:12]) == "WEBP":
		return true
	}
	return false
}

// detectHOCRMagic checks for the hOCR class names in the document head.
func detectHOCRMagic(data []byte) bool {
	head := data[:min(4096, len(data))]
	return bytes.Contains(head, []byte("ocr_page")) ||
		bytes.Contains(head, []byte("ocrx_word")) ||
		bytes.Contains(head, []byte("ocr-system"))
}

func sniffObject(data []byte) Format {
	api := jsoniter.ConfigCompatibleWithStandardLibrary

	if api.Get(data, "analyzeResult").ValueType() == jsoniter.ObjectValue {
		return AzureJSON
	}
	if api.Get(data, "pages", 0, "words").ValueType() == jsoniter.ArrayValue {
		return AzureJSON
	}
	if api.Get(data, "rec_texts").ValueType() == jsoniter.ArrayValue {
		return PaddleJSON
	}
	if api.Get(data, "res", "rec_texts").ValueType() == jsoniter.ArrayValue {
		return PaddleJSON
	}
	if api.Get(data, "detections").ValueType() == jsoniter.ArrayValue {
		return Generic
	}
	return Unknown
}

func sniffArray(data []byte) Format {
	api := jsoniter.ConfigCompatibleWithStandardLibrary

	switch api.Get(data, 0).ValueType() {
	case jsoniter.ArrayValue, jsoniter.NilValue:
		return PaddleLegacy
	case jsoniter.ObjectValue:
		return Generic
	case jsoniter.InvalidValue:
		// empty list
		if api.Valid(data) {
			return Generic
		}
	}
	return Unknown
}
