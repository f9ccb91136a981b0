package handlers

import (
	"encoding/base64"
	"log"
	"net/http"

	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/imaging"
	"github.com/facegate/facegate/internal/recognize"
)

// RecognizeHandler matches faces in a frame against the registered gallery.
type RecognizeHandler struct {
	people database.PersonRepository
	logs   database.LogRepository
	engine *recognize.Engine
}

// NewRecognizeHandler creates a new recognition handler.
func NewRecognizeHandler(repo database.PersonRepository, logs database.LogRepository, engine *recognize.Engine) *RecognizeHandler {
	return &RecognizeHandler{people: repo, logs: logs, engine: engine}
}

// FaceResult is one detected face in a recognition response.
type FaceResult struct {
	Recognized bool       `json:"recognized"`
	PersonID   string     `json:"person_id,omitempty"`
	Name       string     `json:"name,omitempty"`
	Confidence float64    `json:"confidence"`
	Region     RegionJSON `json:"region"`
	FaceJPEG   string     `json:"face_jpeg,omitempty"` // base64
}

// RegionJSON is a face bounding box in frame coordinates.
type RegionJSON struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RecognizeResponse is the full result of one recognition pass.
type RecognizeResponse struct {
	FacesCount    int          `json:"faces_count"`
	Faces         []FaceResult `json:"faces"`
	AnnotatedJPEG string       `json:"annotated_jpeg,omitempty"` // base64
}

// Recognize handles POST /api/v1/recognize. The request is multipart form
// data with a "frame" file. Every detected face is matched independently
// and every attempt is logged, recognized or not. A frame without faces
// is a valid empty result.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	img, err := decodeUploadedImage(r, "frame")
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	snapshot, err := h.people.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load gallery")
		return
	}

	annotated, outcomes, err := h.engine.Recognize(r.Context(), img, database.ToGallery(snapshot))
	if err != nil {
		log.Printf("recognize: %v", err)
		respondError(w, http.StatusBadGateway, "face extraction failed")
		return
	}

	faces := make([]FaceResult, 0, len(outcomes))
	for _, out := range outcomes {
		face := FaceResult{
			Recognized: out.Recognized,
			PersonID:   out.PersonID,
			Name:       out.Name,
			Confidence: out.Confidence,
			Region: RegionJSON{
				X:      out.Region.Min.X,
				Y:      out.Region.Min.Y,
				Width:  out.Region.Dx(),
				Height: out.Region.Dy(),
			},
		}

		var faceJPEG []byte
		if out.Face != nil {
			if data, encErr := imaging.EncodeJPEG(out.Face); encErr == nil {
				faceJPEG = data
				face.FaceJPEG = base64.StdEncoding.EncodeToString(data)
			}
		}

		status := database.StatusUnknown
		if out.Recognized {
			status = database.StatusRecognized
		}
		entry := &database.RecognitionLog{
			Status:     status,
			PersonID:   out.PersonID,
			PersonName: out.Name,
			Confidence: out.Confidence,
			FaceJPEG:   faceJPEG,
		}
		// A failed log write must not turn a successful match into an error.
		if logErr := h.logs.Add(r.Context(), entry); logErr != nil {
			log.Printf("recognize: failed to log attempt: %v", logErr)
		}

		faces = append(faces, face)
	}

	resp := RecognizeResponse{
		FacesCount: len(faces),
		Faces:      faces,
	}
	if encoded, encErr := imaging.EncodeBase64JPEG(annotated); encErr == nil {
		resp.AnnotatedJPEG = encoded
	}

	respondJSON(w, http.StatusOK, resp)
}
