package embedding

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"

	pigo "github.com/esimov/pigo/core"

	"github.com/facegate/facegate/internal/imaging"
)

// Pixel fallback parameters. The embedding is the face crop resized to
// PixelFaceSize x PixelFaceSize with RGB channels flattened row-major and
// scaled to [0,1]. Intentionally crude: it keeps the system working
// without the remote model, it is not meant to be accurate.
const (
	PixelFaceSize = 50
	PixelDim      = PixelFaceSize * PixelFaceSize * 3

	// minDetectionQuality filters out low-confidence pigo detections.
	minDetectionQuality = 5.0
)

// PixelExtractor is the degraded local backend: pigo face detection plus
// a normalized-pixel embedding.
type PixelExtractor struct {
	classifier *pigo.Pigo
}

// NewPixelExtractor loads the pigo cascade from disk.
func NewPixelExtractor(cascadePath string) (*PixelExtractor, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file %s: %w", cascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	return &PixelExtractor{classifier: classifier}, nil
}

// Family returns the embedding family tag for this backend.
func (e *PixelExtractor) Family() string {
	return FamilyPixel
}

// Extract detects faces with pigo and computes a pixel embedding for each.
func (e *PixelExtractor) Extract(ctx context.Context, img image.Image) ([]Detection, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, imaging.ErrInvalidImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	rows, cols := bounds.Dy(), bounds.Dx()
	pixels := pigo.RgbToGrayscale(img)

	params := pigo.CascadeParams{
		MinSize:     20,
		MaxSize:     max(rows, cols),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	found := e.classifier.RunCascade(params, 0.0)
	found = e.classifier.ClusterDetections(found, 0.2)

	// Pigo clustering order is detector-internal; sort by position for a
	// stable first-detected order across calls.
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Row != found[j].Row {
			return found[i].Row < found[j].Row
		}
		return found[i].Col < found[j].Col
	})

	var dets []Detection
	for _, f := range found {
		if f.Q < minDetectionQuality {
			continue
		}
		half := f.Scale / 2
		rect := image.Rect(f.Col-half, f.Row-half, f.Col+half, f.Row+half).
			Add(bounds.Min)

		crop, err := imaging.CropClamped(img, rect)
		if err != nil {
			continue
		}

		dets = append(dets, Detection{
			BBox:      rect.Intersect(bounds),
			Embedding: PixelEmbedding(crop),
			Family:    FamilyPixel,
			Dim:       PixelDim,
			Score:     float64(f.Q) / 100.0,
		})
	}

	if len(dets) == 0 {
		return nil, ErrNoFaceDetected
	}
	return dets, nil
}

// PixelEmbedding computes the fallback embedding for a face crop:
// resize to a fixed square, flatten R,G,B per pixel in row-major order,
// divide each component by 255. Bit-reproducible for identical input.
func PixelEmbedding(crop image.Image) []float32 {
	resized := imaging.Resize(crop, PixelFaceSize, PixelFaceSize)

	emb := make([]float32, 0, PixelDim)
	for y := 0; y < PixelFaceSize; y++ {
		for x := 0; x < PixelFaceSize; x++ {
			c := resized.RGBAAt(x, y)
			emb = append(emb, float32(c.R)/255.0, float32(c.G)/255.0, float32(c.B)/255.0)
		}
	}
	return emb
}
