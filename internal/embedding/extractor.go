// Package embedding turns images into face embeddings. Two backends
// implement the same contract: a remote InsightFace embedding service and
// a local pixel fallback that keeps the system functional when the
// service is unreachable. Callers never branch on the active backend;
// every detection carries its embedding family and dimension so
// downstream comparisons can reject mismatched vectors.
package embedding

import (
	"context"
	"errors"
	"image"
	"log"
)

// Embedding families. Similarity scores are only comparable between
// embeddings of the same family and dimension.
const (
	FamilyInsightFace = "insightface"
	FamilyPixel       = "pixel"
)

var (
	// ErrNoFaceDetected is returned when an image contains no detectable face.
	ErrNoFaceDetected = errors.New("no face detected")

	// ErrBackendUnavailable is returned at construction time when a backend
	// cannot be initialized. It is never surfaced per extraction call.
	ErrBackendUnavailable = errors.New("embedding backend unavailable")
)

// Detection is one detected face: its region in image coordinates, its
// embedding, and the family/dimension tag of the producing backend.
type Detection struct {
	BBox      image.Rectangle
	Embedding []float32
	Family    string
	Dim       int
	Score     float64 // detector confidence, [0,1] for the remote backend
}

// Extractor detects faces in an image and computes their embeddings.
// Implementations return ErrNoFaceDetected when the image decodes fine
// but contains no face.
type Extractor interface {
	Extract(ctx context.Context, img image.Image) ([]Detection, error)
	Family() string
}

// Config carries backend construction parameters.
type Config struct {
	ServiceURL  string // remote embedding service base URL
	Dim         int    // expected remote embedding dimension
	CascadePath string // pigo cascade path for the fallback
}

// New probes the remote embedding service once and returns it when
// reachable; otherwise it constructs the pixel fallback. Construction
// fails only when neither backend is usable.
func New(ctx context.Context, cfg Config) (Extractor, error) {
	remote := NewRemoteExtractor(cfg.ServiceURL, cfg.Dim)
	if err := remote.Ping(ctx); err == nil {
		return remote, nil
	} else {
		log.Printf("embedding service unavailable at %s, using pixel fallback: %v", cfg.ServiceURL, err)
	}

	fallback, err := NewPixelExtractor(cfg.CascadePath)
	if err != nil {
		return nil, errors.Join(ErrBackendUnavailable, err)
	}
	return fallback, nil
}

// BestDetection selects the detection with the largest bounding-box area.
// Ties keep the earliest detection, so selection is deterministic for a
// given detector output order.
func BestDetection(dets []Detection) (Detection, bool) {
	if len(dets) == 0 {
		return Detection{}, false
	}
	best := dets[0]
	bestArea := area(best.BBox)
	for _, d := range dets[1:] {
		if a := area(d.BBox); a > bestArea {
			best = d
			bestArea = a
		}
	}
	return best, true
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
