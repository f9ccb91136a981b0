package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"testing"
)

// testImage creates a width x height RGBA image filled with a solid color.
func testImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodeEmptyData(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Error("expected error for nil data")
	}
	if _, err := Decode([]byte{}); err == nil {
		t.Error("expected error for empty data")
	}
	if _, err := Decode([]byte("not an image")); err == nil {
		t.Error("expected error for garbage data")
	}
}

func TestDecodeJPEGRoundTrip(t *testing.T) {
	src := testImage(32, 24, color.RGBA{R: 120, G: 80, B: 40, A: 255})
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}

	img, err := Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 24 {
		t.Errorf("unexpected bounds %v", img.Bounds())
	}
}

func TestCloneDoesNotShareBuffer(t *testing.T) {
	src := testImage(10, 10, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	dst := Clone(src)

	dst.SetRGBA(5, 5, color.RGBA{R: 255, A: 255})

	if got := src.RGBAAt(5, 5); got.R != 10 {
		t.Errorf("mutating clone changed source pixel: %v", got)
	}
}

func TestResizeDimensions(t *testing.T) {
	src := testImage(100, 60, color.RGBA{R: 50, G: 50, B: 50, A: 255})
	dst := Resize(src, 50, 50)
	if dst.Bounds().Dx() != 50 || dst.Bounds().Dy() != 50 {
		t.Errorf("unexpected bounds %v", dst.Bounds())
	}
}

func TestResizeDeterministic(t *testing.T) {
	src := testImage(37, 23, color.RGBA{R: 90, G: 130, B: 200, A: 255})
	src.SetRGBA(3, 7, color.RGBA{R: 255, G: 0, B: 0, A: 255})

	a := Resize(src, 50, 50)
	b := Resize(src, 50, 50)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("repeated resize produced different pixels")
	}
}

func TestCropClamped(t *testing.T) {
	src := testImage(20, 20, color.RGBA{R: 1, G: 2, B: 3, A: 255})

	tests := []struct {
		name       string
		rect       image.Rectangle
		wantWidth  int
		wantHeight int
		wantErr    bool
	}{
		{"inside bounds", image.Rect(5, 5, 15, 15), 10, 10, false},
		{"overflows right and bottom", image.Rect(10, 10, 40, 40), 10, 10, false},
		{"negative origin", image.Rect(-5, -5, 10, 10), 10, 10, false},
		{"fully outside", image.Rect(30, 30, 40, 40), 0, 0, true},
		{"empty rect", image.Rect(5, 5, 5, 5), 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crop, err := CropClamped(src, tt.rect)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if crop.Bounds().Dx() != tt.wantWidth || crop.Bounds().Dy() != tt.wantHeight {
				t.Errorf("crop bounds %v, want %dx%d", crop.Bounds(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}

func TestEncodeBase64JPEG(t *testing.T) {
	src := testImage(8, 8, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	s, err := EncodeBase64JPEG(src)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		t.Fatalf("not valid base64: %v", err)
	}
	if _, err := Decode(data); err != nil {
		t.Errorf("base64 payload is not a decodable image: %v", err)
	}
}

func TestDrawRectDoesNotPanicOutsideBounds(t *testing.T) {
	dst := testImage(10, 10, color.RGBA{A: 255})
	DrawRect(dst, image.Rect(-5, -5, 50, 50), RecognizedColor, 2)
	DrawRect(dst, image.Rect(20, 20, 30, 30), UnrecognizedColor, 2)
}

func TestDrawRectPaintsBorder(t *testing.T) {
	dst := testImage(20, 20, color.RGBA{A: 255})
	DrawRect(dst, image.Rect(2, 2, 18, 18), RecognizedColor, 1)

	if got := dst.RGBAAt(2, 2); got != RecognizedColor {
		t.Errorf("corner pixel not painted: %v", got)
	}
	if got := dst.RGBAAt(10, 2); got != RecognizedColor {
		t.Errorf("top edge pixel not painted: %v", got)
	}
	// Interior stays untouched.
	if got := dst.RGBAAt(10, 10); got == RecognizedColor {
		t.Error("interior pixel was painted")
	}
}
