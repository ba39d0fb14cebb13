package ocr

// DefaultLanguage is the Tesseract model for vertical traditional Chinese.
const DefaultLanguage = "chi_tra_vert"

// DefaultBinarizeThreshold is the gray level above which a pixel turns white.
const DefaultBinarizeThreshold = 127

// PageSegMode represents page segmentation modes for OCR.
// These control how Tesseract analyzes the page layout.
type PageSegMode int

// Page segmentation modes (values match Tesseract's).
const (
	PSM_OSD_ONLY               PageSegMode = 0  // Orientation and script detection only
	PSM_AUTO_OSD               PageSegMode = 1  // Automatic with OSD
	PSM_AUTO_ONLY              PageSegMode = 2  // Automatic, no OSD or OCR
	PSM_AUTO                   PageSegMode = 3  // Fully automatic (default)
	PSM_SINGLE_COLUMN          PageSegMode = 4  // Single column of variable sizes
	PSM_SINGLE_BLOCK_VERT_TEXT PageSegMode = 5  // Single uniform block of vertically aligned text
	PSM_SINGLE_BLOCK           PageSegMode = 6  // Single uniform block of text
	PSM_SINGLE_LINE            PageSegMode = 7  // Single text line
	PSM_SINGLE_WORD            PageSegMode = 8  // Single word
	PSM_CIRCLE_WORD            PageSegMode = 9  // Single word in a circle
	PSM_SINGLE_CHAR            PageSegMode = 10 // Single character
	PSM_SPARSE_TEXT            PageSegMode = 11 // Find as much text as possible
	PSM_SPARSE_TEXT_OSD        PageSegMode = 12 // Sparse text with OSD
	PSM_RAW_LINE               PageSegMode = 13 // Treat image as single text line
)

// Level selects the granularity of the boxes returned by Detect.
type Level int

// Iterator levels (values match Tesseract's).
const (
	LevelBlock    Level = 0
	LevelPara     Level = 1
	LevelTextLine Level = 2
	LevelWord     Level = 3
	LevelSymbol   Level = 4
)

// Config holds OCR client configuration.
type Config struct {
	// Language is a "+" separated list of Tesseract models.
	// Default: chi_tra_vert
	Language string

	// PageSegMode controls layout analysis.
	// Default: PSM_SINGLE_BLOCK_VERT_TEXT
	PageSegMode PageSegMode

	// Level is the box granularity of Detect.
	// Default: LevelWord
	Level Level

	// BinarizeThreshold, when positive, thresholds the image before
	// recognition. See Binarize.
	// Default: 0 (disabled)
	BinarizeThreshold int
}

// DefaultConfig returns configuration suited to vertical historical pages.
func DefaultConfig() Config {
	return Config{
		Language:    DefaultLanguage,
		PageSegMode: PSM_SINGLE_BLOCK_VERT_TEXT,
		Level:       LevelWord,
	}
}
