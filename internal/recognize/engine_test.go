package recognize

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/match"
)

type stubExtractor struct {
	dets []embedding.Detection
	err  error
}

func (s *stubExtractor) Extract(ctx context.Context, img image.Image) ([]embedding.Detection, error) {
	return s.dets, s.err
}

func (s *stubExtractor) Family() string { return "stub" }

func testThresholds() *config.ThresholdsConfig {
	return &config.ThresholdsConfig{
		Families: map[string]config.FamilyThresholds{
			"stub": {Recognition: 0.5, Duplicate: 0.45},
		},
	}
}

func testFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

func TestRecognizeMatchesKnownFace(t *testing.T) {
	ext := &stubExtractor{dets: []embedding.Detection{
		{
			BBox:      image.Rect(10, 10, 50, 50),
			Embedding: []float32{1, 0, 0},
			Family:    "stub",
			Dim:       3,
		},
	}}
	gallery := []match.GalleryEntry{
		{PersonID: "p1", Name: "Alice", Embedding: []float32{1, 0, 0}, Family: "stub"},
		{PersonID: "p2", Name: "Bob", Embedding: []float32{0, 1, 0}, Family: "stub"},
	}

	engine := New(ext, testThresholds())
	annotated, outcomes, err := engine.Recognize(context.Background(), testFrame(), gallery)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if annotated == nil {
		t.Fatal("expected annotated frame")
	}
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(outcomes))
	}
	out := outcomes[0]
	if !out.Recognized {
		t.Error("expected face to be recognized")
	}
	if out.PersonID != "p1" || out.Name != "Alice" {
		t.Errorf("matched %s/%s, want p1/Alice", out.PersonID, out.Name)
	}
	if out.Confidence < 0.99 {
		t.Errorf("confidence = %f, want ~1.0", out.Confidence)
	}
	if out.Face == nil {
		t.Error("expected cropped face")
	}
	if got, want := out.Face.Bounds().Dx(), 40; got != want {
		t.Errorf("face width = %d, want %d", got, want)
	}
}

func TestRecognizeUnknownFace(t *testing.T) {
	ext := &stubExtractor{dets: []embedding.Detection{
		{
			BBox:      image.Rect(10, 10, 50, 50),
			Embedding: []float32{0, 0, 1},
			Family:    "stub",
			Dim:       3,
		},
	}}
	gallery := []match.GalleryEntry{
		{PersonID: "p1", Name: "Alice", Embedding: []float32{1, 0, 0}, Family: "stub"},
	}

	engine := New(ext, testThresholds())
	_, outcomes, err := engine.Recognize(context.Background(), testFrame(), gallery)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(outcomes))
	}
	if outcomes[0].Recognized {
		t.Error("orthogonal embedding should not match")
	}
	if outcomes[0].PersonID != "" {
		t.Errorf("unrecognized outcome carries person ID %q", outcomes[0].PersonID)
	}
}

func TestRecognizeNoFaces(t *testing.T) {
	ext := &stubExtractor{err: embedding.ErrNoFaceDetected}

	engine := New(ext, testThresholds())
	annotated, outcomes, err := engine.Recognize(context.Background(), testFrame(), nil)
	if err != nil {
		t.Fatalf("Recognize() error = %v, want nil for empty frame", err)
	}
	if annotated == nil {
		t.Error("expected clean annotated copy even without faces")
	}
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes, want 0", len(outcomes))
	}
}

func TestRecognizeExtractorFailure(t *testing.T) {
	wantErr := errors.New("backend exploded")
	ext := &stubExtractor{err: wantErr}

	engine := New(ext, testThresholds())
	_, _, err := engine.Recognize(context.Background(), testFrame(), nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("Recognize() error = %v, want %v", err, wantErr)
	}
}

func TestRecognizeDoesNotModifyInput(t *testing.T) {
	ext := &stubExtractor{dets: []embedding.Detection{
		{
			BBox:      image.Rect(10, 10, 50, 50),
			Embedding: []float32{1, 0, 0},
			Family:    "stub",
			Dim:       3,
		},
	}}

	frame := testFrame()
	before := make([]uint8, len(frame.Pix))
	copy(before, frame.Pix)

	engine := New(ext, testThresholds())
	if _, _, err := engine.Recognize(context.Background(), frame, nil); err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}

	for i := range before {
		if frame.Pix[i] != before[i] {
			t.Fatal("input frame was modified")
		}
	}
}

func TestRecognizeUnknownFamilyNeverMatches(t *testing.T) {
	ext := &stubExtractor{dets: []embedding.Detection{
		{
			BBox:      image.Rect(0, 0, 20, 20),
			Embedding: []float32{1, 0, 0},
			Family:    "unconfigured",
			Dim:       3,
		},
	}}
	gallery := []match.GalleryEntry{
		{PersonID: "p1", Name: "Alice", Embedding: []float32{1, 0, 0}, Family: "unconfigured"},
	}

	engine := New(ext, testThresholds())
	_, outcomes, err := engine.Recognize(context.Background(), testFrame(), gallery)
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if outcomes[0].Recognized {
		t.Error("family without configured threshold must never match")
	}
}
