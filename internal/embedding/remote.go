package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/facegate/facegate/internal/imaging"
)

// RemoteExtractor computes face embeddings using the InsightFace
// embedding service over HTTP.
type RemoteExtractor struct {
	baseURL string
	dim     int
	client  *http.Client
}

// NewRemoteExtractor creates a client for the embedding service.
func NewRemoteExtractor(baseURL string, dim int) *RemoteExtractor {
	return &RemoteExtractor{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		dim:     dim,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Family returns the embedding family tag for this backend.
func (e *RemoteExtractor) Family() string {
	return FamilyInsightFace
}

// Ping checks service availability. Used once at construction to decide
// whether the fallback backend is needed.
func (e *RemoteExtractor) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("embedding service not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding service health check returned status %d", resp.StatusCode)
	}
	return nil
}

// faceDetection mirrors one face in the service response.
type faceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// faceResponse is the response from the face embedding endpoint.
type faceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// Extract posts the image to the service and returns all detected faces.
func (e *RemoteExtractor) Extract(ctx context.Context, img image.Image) ([]Detection, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, imaging.ErrInvalidImage
	}

	imageData, err := imaging.EncodeJPEG(img)
	if err != nil {
		return nil, err
	}

	body, err := e.postMultipartImage(ctx, "/embed/face", imageData)
	if err != nil {
		return nil, err
	}

	var faceResp faceResponse
	if err := json.Unmarshal(body, &faceResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(faceResp.Faces) == 0 {
		return nil, ErrNoFaceDetected
	}

	dets := make([]Detection, 0, len(faceResp.Faces))
	for _, f := range faceResp.Faces {
		if len(f.Embedding) == 0 || len(f.BBox) != 4 {
			continue
		}
		dets = append(dets, Detection{
			BBox:      image.Rect(int(f.BBox[0]), int(f.BBox[1]), int(f.BBox[2]), int(f.BBox[3])),
			Embedding: f.Embedding,
			Family:    FamilyInsightFace,
			Dim:       len(f.Embedding),
			Score:     f.DetScore,
		})
	}
	if len(dets) == 0 {
		return nil, ErrNoFaceDetected
	}
	// The service occasionally reports the same face twice at slightly
	// shifted boxes.
	return DedupeDetections(dets), nil
}

// postMultipartImage constructs a multipart form with the image data and
// posts it to the given endpoint.
func (e *RemoteExtractor) postMultipartImage(ctx context.Context, endpoint string, imageData []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="image.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := part.Write(imageData); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}
