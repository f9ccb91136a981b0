package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/imaging"
	"github.com/facegate/facegate/internal/match"
	"github.com/facegate/facegate/internal/people"
)

// RegisterHandler enrolls new people from a photo plus identity fields.
type RegisterHandler struct {
	people     database.PersonRepository
	extractor  embedding.Extractor
	thresholds *config.ThresholdsConfig
	indexes    *database.IndexSet
	stats      *StatsHandler
}

// NewRegisterHandler creates a new registration handler.
func NewRegisterHandler(repo database.PersonRepository, extractor embedding.Extractor, thresholds *config.ThresholdsConfig, indexes *database.IndexSet, stats *StatsHandler) *RegisterHandler {
	return &RegisterHandler{
		people:     repo,
		extractor:  extractor,
		thresholds: thresholds,
		indexes:    indexes,
		stats:      stats,
	}
}

// RegisterResponse is returned on successful enrollment.
type RegisterResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Family string `json:"family"`
	Dim    int    `json:"dim"`
}

// DuplicateResponse is returned when the submitted face already belongs
// to a registered person.
type DuplicateResponse struct {
	Error    string  `json:"error"`
	PersonID string  `json:"person_id"`
	Name     string  `json:"name"`
	Score    float64 `json:"score"`
}

// Register handles POST /api/v1/register. The request is multipart form
// data with a "photo" file and name/age/id_card_number/nationality/
// profession fields. The largest detected face becomes the person's
// single stored embedding. Enrollment is refused when the face is already
// close to a registered one or when the ID card number collides.
func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	img, err := decodeUploadedImage(r, "photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	age := 0
	if s := r.FormValue("age"); s != "" {
		age, err = strconv.Atoi(s)
		if err != nil {
			respondError(w, http.StatusBadRequest, "age must be a number")
			return
		}
	}
	reg := people.Registration{
		Name:         strings.TrimSpace(r.FormValue("name")),
		Age:          age,
		IDCardNumber: strings.TrimSpace(r.FormValue("id_card_number")),
		Nationality:  strings.TrimSpace(r.FormValue("nationality")),
		Profession:   strings.TrimSpace(r.FormValue("profession")),
	}
	if err := reg.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dets, err := h.extractor.Extract(r.Context(), img)
	if errors.Is(err, embedding.ErrNoFaceDetected) {
		respondError(w, http.StatusUnprocessableEntity, "no face detected in photo")
		return
	}
	if err != nil {
		log.Printf("register: extraction failed for %s: %v", sanitizeForLog(reg.Name), err)
		respondError(w, http.StatusBadGateway, "face extraction failed")
		return
	}
	det, _ := embedding.BestDetection(dets)

	snapshot, err := h.people.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load gallery")
		return
	}

	probe := match.Probe{Embedding: det.Embedding, Family: det.Family}
	if dup, who := match.CheckDuplicate(probe, database.ToGallery(snapshot), h.thresholds.Duplicate(det.Family)); dup {
		respondJSON(w, http.StatusConflict, DuplicateResponse{
			Error:    "face already registered",
			PersonID: who.PersonID,
			Name:     who.Name,
			Score:    who.Score,
		})
		return
	}

	var photoJPEG []byte
	if face, cropErr := imaging.CropClamped(img, det.BBox); cropErr == nil {
		photoJPEG, _ = imaging.EncodeJPEG(face)
	}

	person := &database.Person{
		Name:         reg.Name,
		Age:          reg.Age,
		IDCardNumber: reg.IDCardNumber,
		Nationality:  reg.Nationality,
		Profession:   reg.Profession,
		Embedding:    det.Embedding,
		Family:       det.Family,
		Dim:          det.Dim,
		PhotoJPEG:    photoJPEG,
	}

	id, err := h.people.Insert(r.Context(), person)
	if errors.Is(err, database.ErrConflict) {
		respondError(w, http.StatusConflict, database.ErrConflict.Error())
		return
	}
	if err != nil {
		log.Printf("register: insert failed for %s: %v", sanitizeForLog(reg.Name), err)
		respondError(w, http.StatusInternalServerError, "failed to store person")
		return
	}

	person.ID = id
	h.indexes.Add(person)
	h.stats.InvalidateCache()
	log.Printf("registered %s (%s, %s dim %d)", sanitizeForLog(person.Name), id, person.Family, person.Dim)

	respondJSON(w, http.StatusCreated, RegisterResponse{
		ID:     id,
		Name:   person.Name,
		Family: person.Family,
		Dim:    person.Dim,
	})
}
