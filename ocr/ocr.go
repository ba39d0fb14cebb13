//go:build ocr

// Package ocr provides OCR (Optical Character Recognition) backed detection
// of text boxes in page scans.
//
// This package wraps the Tesseract OCR engine via gosseract. It requires
// Tesseract to be installed on the system with the vertical Chinese model.
// On macOS, install via:
//
//	brew install tesseract tesseract-lang
//
// On Ubuntu/Debian:
//
//	apt-get install tesseract-ocr tesseract-ocr-chi-tra-vert
package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/histpath/readingorder/model"
)

// Client wraps Tesseract for OCR operations.
type Client struct {
	client *gosseract.Client
	config Config
}

// New creates a new OCR client with default configuration.
// The client should be closed when no longer needed to release resources.
func New() (*Client, error) {
	return NewWithConfig(DefaultConfig())
}

// NewWithConfig creates a new OCR client with custom configuration.
func NewWithConfig(config Config) (*Client, error) {
	client := gosseract.NewClient()

	if config.Language != "" {
		if err := client.SetLanguage(config.Language); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(config.PageSegMode)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return &Client{client: client, config: config}, nil
}

// Close releases OCR resources.
func (c *Client) Close() error {
	if c != nil && c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Config returns the client's configuration.
func (c *Client) Config() Config {
	return c.config
}

func (c *Client) setImage(imageData []byte) error {
	if c.config.BinarizeThreshold > 0 {
		bin, err := Binarize(imageData, c.config.BinarizeThreshold)
		if err != nil {
			return err
		}
		imageData = bin
	}
	if err := c.client.SetImageFromBytes(imageData); err != nil {
		return fmt.Errorf("failed to set image: %w", err)
	}
	return nil
}

// RecognizeImage performs OCR on image data (PNG, TIFF, JPEG, etc.).
// Returns the recognized text with leading/trailing whitespace trimmed.
func (c *Client) RecognizeImage(imageData []byte) (string, error) {
	if err := c.setImage(imageData); err != nil {
		return "", err
	}

	text, err := c.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return strings.TrimSpace(text), nil
}

// Detect recognizes image data and returns one detection per box at the
// configured level, in Tesseract's order. Confidences are scaled to [0, 1].
func (c *Client) Detect(imageData []byte) ([]model.Detection, error) {
	if err := c.setImage(imageData); err != nil {
		return nil, err
	}

	boxes, err := c.client.GetBoundingBoxes(gosseract.PageIteratorLevel(c.config.Level))
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	dets := make([]model.Detection, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		rect := model.NewBBox(
			float64(b.Box.Min.X),
			float64(b.Box.Min.Y),
			float64(b.Box.Dx()),
			float64(b.Box.Dy()),
		)
		dets = append(dets, model.Detection{
			Text:       text,
			Confidence: b.Confidence / 100,
			Rect:       &rect,
		})
	}
	return dets, nil
}

// SetLanguage sets the language(s) for OCR recognition.
// Multiple languages can be specified as a "+" separated string (e.g., "chi_tra_vert+chi_tra").
func (c *Client) SetLanguage(lang string) error {
	if err := c.client.SetLanguage(lang); err != nil {
		return err
	}
	c.config.Language = lang
	return nil
}

// SetPageSegMode sets the page segmentation mode.
// This affects how Tesseract analyzes the page layout.
func (c *Client) SetPageSegMode(mode PageSegMode) error {
	if err := c.client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return err
	}
	c.config.PageSegMode = mode
	return nil
}
