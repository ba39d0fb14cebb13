//go:build ocr

package ocr

import (
	"testing"
)

func TestNew(t *testing.T) {
	client, err := NewWithConfig(Config{Language: "eng", PageSegMode: PSM_AUTO, Level: LevelWord})
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	if client.Config().Language != "eng" {
		t.Errorf("Config().Language = %q", client.Config().Language)
	}
}

func TestDetect(t *testing.T) {
	client, err := NewWithConfig(Config{Language: "eng", PageSegMode: PSM_AUTO, Level: LevelWord, BinarizeThreshold: DefaultBinarizeThreshold})
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	// We don't check the recognized text since the test image is just a
	// rectangle; confidences must still be scaled
	dets, err := client.Detect(createTestPNG(100, 50))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	for _, d := range dets {
		if d.Confidence < 0 || d.Confidence > 1 {
			t.Errorf("confidence %v not scaled to [0, 1]", d.Confidence)
		}
		if d.Rect == nil {
			t.Error("expected rectangle geometry")
		}
	}
}

func TestRecognizeImage(t *testing.T) {
	client, err := NewWithConfig(Config{Language: "eng", PageSegMode: PSM_AUTO})
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}
	defer client.Close()

	if _, err := client.RecognizeImage(createTestPNG(100, 50)); err != nil {
		t.Errorf("RecognizeImage failed: %v", err)
	}
}

func TestClose(t *testing.T) {
	client, err := NewWithConfig(Config{Language: "eng"})
	if err != nil {
		t.Skipf("Tesseract not available: %v", err)
	}

	// First close should succeed
	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// Second close should also be safe (nil client)
	client.client = nil
	if err := client.Close(); err != nil {
		t.Errorf("Close on nil client failed: %v", err)
	}
}
