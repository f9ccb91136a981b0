package handlers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/facegate/facegate/internal/config"
	"github.com/facegate/facegate/internal/database"
	"github.com/facegate/facegate/internal/embedding"
	"github.com/facegate/facegate/internal/imaging"
	"github.com/facegate/facegate/internal/match"
)

// defaultSimilarLimit bounds /similar responses when no limit is given.
const defaultSimilarLimit = 5

// PeopleHandler manages registered people.
type PeopleHandler struct {
	people     database.PersonRepository
	extractor  embedding.Extractor
	thresholds *config.ThresholdsConfig
	indexes    *database.IndexSet
	stats      *StatsHandler
}

// NewPeopleHandler creates a new people handler.
func NewPeopleHandler(repo database.PersonRepository, extractor embedding.Extractor, thresholds *config.ThresholdsConfig, indexes *database.IndexSet, stats *StatsHandler) *PeopleHandler {
	return &PeopleHandler{
		people:     repo,
		extractor:  extractor,
		thresholds: thresholds,
		indexes:    indexes,
		stats:      stats,
	}
}

// PersonSummary is a person without their photo or embedding.
type PersonSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	IDCardNumber string    `json:"id_card_number"`
	Nationality  string    `json:"nationality"`
	Profession   string    `json:"profession"`
	Family       string    `json:"family"`
	Dim          int       `json:"dim"`
	CreatedAt    time.Time `json:"created_at"`
}

// PersonDetail adds the registration photo to a summary.
type PersonDetail struct {
	PersonSummary
	PhotoJPEG string    `json:"photo_jpeg,omitempty"` // base64
	UpdatedAt time.Time `json:"updated_at"`
}

func summarize(p *database.Person) PersonSummary {
	return PersonSummary{
		ID:           p.ID,
		Name:         p.Name,
		Age:          p.Age,
		IDCardNumber: p.IDCardNumber,
		Nationality:  p.Nationality,
		Profession:   p.Profession,
		Family:       p.Family,
		Dim:          p.Dim,
		CreatedAt:    p.CreatedAt,
	}
}

// List handles GET /api/v1/people.
func (h *PeopleHandler) List(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.people.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list people")
		return
	}

	summaries := make([]PersonSummary, 0, len(snapshot))
	for i := range snapshot {
		summaries = append(summaries, summarize(&snapshot[i]))
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"count":  len(summaries),
		"people": summaries,
	})
}

// Get handles GET /api/v1/people/{id}.
func (h *PeopleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.people.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, database.ErrNotFound.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load person")
		return
	}

	detail := PersonDetail{
		PersonSummary: summarize(p),
		UpdatedAt:     p.UpdatedAt,
	}
	if len(p.PhotoJPEG) > 0 {
		detail.PhotoJPEG = base64.StdEncoding.EncodeToString(p.PhotoJPEG)
	}
	respondJSON(w, http.StatusOK, detail)
}

// Delete handles DELETE /api/v1/people/{id}. A deleted person can no
// longer be recognized.
func (h *PeopleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.people.Delete(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, database.ErrNotFound.Error())
		return
	}
	if err != nil {
		log.Printf("people: delete %s failed: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to delete person")
		return
	}

	h.indexes.Remove(id)
	h.stats.InvalidateCache()
	respondJSON(w, http.StatusNoContent, nil)
}

// UpdatePhoto handles PUT /api/v1/people/{id}/photo. The new photo's best
// face replaces the stored embedding wholesale; embeddings are never
// averaged or accumulated.
func (h *PeopleHandler) UpdatePhoto(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	current, err := h.people.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, database.ErrNotFound.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load person")
		return
	}

	img, err := decodeUploadedImage(r, "photo")
	if err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	dets, err := h.extractor.Extract(r.Context(), img)
	if errors.Is(err, embedding.ErrNoFaceDetected) {
		respondError(w, http.StatusUnprocessableEntity, "no face detected in photo")
		return
	}
	if err != nil {
		respondError(w, http.StatusBadGateway, "face extraction failed")
		return
	}
	det, _ := embedding.BestDetection(dets)

	// The new face must not collide with anyone else's.
	snapshot, err := h.people.ListAll(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load gallery")
		return
	}
	others := make([]match.GalleryEntry, 0, len(snapshot))
	for _, entry := range database.ToGallery(snapshot) {
		if entry.PersonID != id {
			others = append(others, entry)
		}
	}
	probe := match.Probe{Embedding: det.Embedding, Family: det.Family}
	if dup, who := match.CheckDuplicate(probe, others, h.thresholds.Duplicate(det.Family)); dup {
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

	if err := h.people.ReplaceEmbedding(r.Context(), id, det.Embedding, det.Family, det.Dim, photoJPEG); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, database.ErrNotFound.Error())
			return
		}
		log.Printf("people: photo update for %s failed: %v", sanitizeForLog(id), err)
		respondError(w, http.StatusInternalServerError, "failed to update photo")
		return
	}

	// Re-key the index entry; family may have changed with the backend.
	h.indexes.Remove(id)
	updated := *current
	updated.Embedding = det.Embedding
	updated.Family = det.Family
	updated.Dim = det.Dim
	h.indexes.Add(&updated)

	respondJSON(w, http.StatusOK, RegisterResponse{
		ID:     id,
		Name:   current.Name,
		Family: det.Family,
		Dim:    det.Dim,
	})
}

// SimilarPerson is one entry in a /similar response.
type SimilarPerson struct {
	PersonSummary
	Score float64 `json:"score"`
}

// Similar handles GET /api/v1/people/{id}/similar?limit=N. It uses the
// approximate index; results are candidates with exact scores attached,
// not recognition decisions.
func (h *PeopleHandler) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	limit := defaultSimilarLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	p, err := h.people.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, database.ErrNotFound.Error())
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load person")
		return
	}

	// Ask for one extra neighbor since the person matches themselves.
	candidates, scores, err := h.indexes.Search(p.Family, p.Embedding, limit+1)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	similar := make([]SimilarPerson, 0, limit)
	for i := range candidates {
		if candidates[i].ID == id {
			continue
		}
		similar = append(similar, SimilarPerson{
			PersonSummary: summarize(&candidates[i]),
			Score:         scores[i],
		})
		if len(similar) == limit {
			break
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"person_id": id,
		"similar":   similar,
	})
}
