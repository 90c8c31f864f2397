package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{200, 30, 30, 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("Failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

func TestNormalizeJPEG(t *testing.T) {
	data, err := Normalize(bytes.NewReader(encodeJPEG(t, 100, 100)), 0)
	if err != nil {
		t.Fatalf("Failed to normalize JPEG: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected non-empty output")
	}
}

func TestNormalizePNGBecomesJPEG(t *testing.T) {
	data, err := Normalize(bytes.NewReader(encodePNG(t, 100, 100)), 0)
	if err != nil {
		t.Fatalf("Failed to normalize PNG: %v", err)
	}

	_, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("Expected jpeg output, got %s", format)
	}
}

func TestNormalizeShrinksLargeImages(t *testing.T) {
	data, err := Normalize(bytes.NewReader(encodeJPEG(t, 2048, 1024)), 0)
	if err != nil {
		t.Fatalf("Failed to normalize large image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		t.Errorf("Expected dimensions within %d, got %dx%d", maxDimension, bounds.Dx(), bounds.Dy())
	}
	if bounds.Dx() != maxDimension {
		t.Errorf("Expected the long side scaled to %d, got %d", maxDimension, bounds.Dx())
	}
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	data, err := Normalize(bytes.NewReader(encodeJPEG(t, 60, 40)), 0)
	if err != nil {
		t.Fatalf("Failed to normalize small image: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != 60 || bounds.Dy() != 40 {
		t.Errorf("Small image should keep its size, got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeRejectsNonImages(t *testing.T) {
	if _, err := Normalize(bytes.NewReader([]byte("definitely not an image")), 0); err == nil {
		t.Error("Expected error for non-image input")
	}
}

func TestNormalizeRejectsGIF(t *testing.T) {
	if _, err := Normalize(bytes.NewReader([]byte("GIF89a.......")), 0); err == nil {
		t.Error("Expected error for GIF input")
	}
}

func TestNormalizeEnforcesSizeLimit(t *testing.T) {
	payload := encodeJPEG(t, 400, 400)
	if _, err := Normalize(bytes.NewReader(payload), 10); err == nil {
		t.Error("Expected error when upload exceeds the size limit")
	}
}
