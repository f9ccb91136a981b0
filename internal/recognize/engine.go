// Package recognize orchestrates one recognition pass: extract faces
// from a frame, match each against the gallery, and annotate a copy of
// the frame with the outcome. The engine is a pure transform; logging
// and persistence belong to the caller.
package recognize

import (
	"context"
	"errors"
	"image"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/imaging"
	"github.com/facegate/facegate/internal/match"
)

// Outcome describes one detected face after matching.
type Outcome struct {
	Region     image.Rectangle
	Recognized bool
	PersonID   string
	Name       string
	Confidence float64
	Face       image.Image // cropped face region
}

// Engine runs recognition passes with a fixed extractor and threshold
// configuration. It holds no other state; the gallery snapshot is passed
// per call.
type Engine struct {
	extractor  embedding.Extractor
	thresholds *config.ThresholdsConfig
}

// New creates an engine.
func New(extractor embedding.Extractor, thresholds *config.ThresholdsConfig) *Engine {
	return &Engine{extractor: extractor, thresholds: thresholds}
}

// Recognize extracts all faces from the frame and matches each against
// the gallery using the recognition threshold for the face's embedding
// family. It returns an annotated copy of the frame (green marker for
// recognized faces, red for unknown) and one outcome per face. The input
// frame is never modified. A frame with no detectable face yields an
// empty outcome list and a clean copy, not an error.
func (e *Engine) Recognize(ctx context.Context, frame image.Image, gallery []match.GalleryEntry) (image.Image, []Outcome, error) {
	if frame == nil || frame.Bounds().Empty() {
		return nil, nil, imaging.ErrInvalidImage
	}

	annotated := imaging.Clone(frame)

	dets, err := e.extractor.Extract(ctx, frame)
	if errors.Is(err, embedding.ErrNoFaceDetected) {
		return annotated, []Outcome{}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	outcomes := make([]Outcome, 0, len(dets))
	for _, det := range dets {
		threshold := e.thresholds.Recognition(det.Family)
		result := match.BestMatch(match.Probe{
			Embedding: det.Embedding,
			Family:    det.Family,
		}, gallery, threshold)

		markerColor := imaging.UnrecognizedColor
		if result.Matched {
			markerColor = imaging.RecognizedColor
		}
		imaging.DrawRect(annotated, det.BBox, markerColor, 2)

		// Crop from the original frame, not the annotated copy.
		face, cropErr := imaging.CropClamped(frame, det.BBox)
		if cropErr != nil {
			face = nil
		}

		outcomes = append(outcomes, Outcome{
			Region:     det.BBox,
			Recognized: result.Matched,
			PersonID:   result.PersonID,
			Name:       result.Name,
			Confidence: result.Score,
			Face:       face,
		})
	}

	return annotated, outcomes, nil
}
