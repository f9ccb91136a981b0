package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/database/mock"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/imaging"
)

// stubExtractor returns canned detections so handler tests control
// exactly what face comes out of an upload.
type stubExtractor struct {
	dets []embedding.Detection
	err  error
}

func (s *stubExtractor) Extract(ctx context.Context, img image.Image) ([]embedding.Detection, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.dets, nil
}

func (s *stubExtractor) Family() string { return "stub" }

func stubDetection(emb []float32) embedding.Detection {
	return embedding.Detection{
		BBox:      image.Rect(10, 10, 50, 50),
		Embedding: emb,
		Family:    "stub",
		Dim:       len(emb),
	}
}

func testThresholds() *config.ThresholdsConfig {
	return &config.ThresholdsConfig{
		Families: map[string]config.FamilyThresholds{
			"stub": {Recognition: 0.5, Duplicate: 0.45},
		},
	}
}

// testJPEG encodes a small gradient image for upload bodies.
func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
		}
	}
	data, err := imaging.EncodeJPEG(img)
	if err != nil {
		t.Fatalf("failed to encode test JPEG: %v", err)
	}
	return data
}

// multipartRequest builds a multipart request with one file and optional
// form fields.
func multipartRequest(t *testing.T, method, path, fileField string, fileData []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if fileData != nil {
		part, err := writer.CreateFormFile(fileField, "photo.jpg")
		if err != nil {
			t.Fatalf("failed to create form file: %v", err)
		}
		if _, err := part.Write(fileData); err != nil {
			t.Fatalf("failed to write form file: %v", err)
		}
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write form field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// seedPerson inserts a person with the given embedding into the repo.
func seedPerson(t *testing.T, repo *mock.PersonRepository, name, idCard string, emb []float32) string {
	t.Helper()
	id, err := repo.Insert(context.Background(), &database.Person{
		Name:         name,
		IDCardNumber: idCard,
		Embedding:    emb,
		Family:       "stub",
		Dim:          len(emb),
	})
	if err != nil {
		t.Fatalf("failed to seed person %s: %v", name, err)
	}
	return id
}

// builtIndexSet creates an index set over the repo's current contents.
func builtIndexSet(t *testing.T, repo *mock.PersonRepository) *database.IndexSet {
	t.Helper()
	people, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("failed to list people: %v", err)
	}
	set := database.NewIndexSet()
	if err := set.Rebuild(people); err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	return set
}

// parseJSONResponse parses a JSON response body into the target type.
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code.
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message.
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
