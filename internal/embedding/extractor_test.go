package embedding

import (
	"image"
	"testing"
)

func TestBestDetection(t *testing.T) {
	tests := []struct {
		name     string
		dets     []Detection
		wantOK   bool
		wantBBox image.Rectangle
	}{
		{
			name:   "empty",
			dets:   nil,
			wantOK: false,
		},
		{
			name: "single face",
			dets: []Detection{
				{BBox: image.Rect(0, 0, 10, 10)},
			},
			wantOK:   true,
			wantBBox: image.Rect(0, 0, 10, 10),
		},
		{
			name: "largest wins",
			dets: []Detection{
				{BBox: image.Rect(0, 0, 10, 10)},
				{BBox: image.Rect(0, 0, 30, 30)},
				{BBox: image.Rect(0, 0, 20, 20)},
			},
			wantOK:   true,
			wantBBox: image.Rect(0, 0, 30, 30),
		},
		{
			name: "tie keeps first",
			dets: []Detection{
				{BBox: image.Rect(0, 0, 20, 20)},
				{BBox: image.Rect(50, 50, 70, 70)},
			},
			wantOK:   true,
			wantBBox: image.Rect(0, 0, 20, 20),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			best, ok := BestDetection(tt.dets)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && best.BBox != tt.wantBBox {
				t.Errorf("best bbox = %v, want %v", best.BBox, tt.wantBBox)
			}
		})
	}
}

func TestBestDetectionStableAcrossCalls(t *testing.T) {
	dets := []Detection{
		{BBox: image.Rect(0, 0, 20, 20), Family: FamilyPixel},
		{BBox: image.Rect(5, 5, 25, 25), Family: FamilyPixel},
	}
	first, _ := BestDetection(dets)
	for i := 0; i < 10; i++ {
		again, _ := BestDetection(dets)
		if again.BBox != first.BBox {
			t.Fatal("BestDetection is not deterministic")
		}
	}
}
