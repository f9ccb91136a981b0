package embedding

import (
	"image"
	"image/color"
	"testing"
)

func TestPixelEmbeddingDimension(t *testing.T) {
	crop := image.NewRGBA(image.Rect(0, 0, 80, 120))
	emb := PixelEmbedding(crop)
	if len(emb) != PixelDim {
		t.Errorf("embedding length = %d, want %d", len(emb), PixelDim)
	}
}

func TestPixelEmbeddingRange(t *testing.T) {
	crop := image.NewRGBA(image.Rect(0, 0, 60, 60))
	for y := 0; y < 60; y++ {
		for x := 0; x < 60; x++ {
			crop.SetRGBA(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 200, A: 255})
		}
	}

	emb := PixelEmbedding(crop)
	for i, v := range emb {
		if v < 0 || v > 1 {
			t.Fatalf("component %d = %v outside [0,1]", i, v)
		}
	}
}

func TestPixelEmbeddingReproducible(t *testing.T) {
	crop := image.NewRGBA(image.Rect(0, 0, 33, 47))
	for y := 0; y < 47; y++ {
		for x := 0; x < 33; x++ {
			crop.SetRGBA(x, y, color.RGBA{R: uint8(x * 7 % 256), G: uint8(y * 5 % 256), B: uint8((x + y) % 256), A: 255})
		}
	}

	a := PixelEmbedding(crop)
	b := PixelEmbedding(crop)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("component %d differs between runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPixelEmbeddingWhiteIsOnes(t *testing.T) {
	crop := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			crop.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}

	emb := PixelEmbedding(crop)
	for i, v := range emb {
		if v != 1.0 {
			t.Fatalf("component %d = %v, want 1.0 for a white crop", i, v)
		}
	}
}

func TestNewPixelExtractorMissingCascade(t *testing.T) {
	if _, err := NewPixelExtractor("does/not/exist"); err == nil {
		t.Error("expected error for missing cascade file")
	}
}
