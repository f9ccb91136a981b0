package handlers

import (
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/facegate/facegate/internal/database"
)

// LogsHandler serves the recognition attempt history.
type LogsHandler struct {
	logs database.LogRepository
}

// NewLogsHandler creates a new logs handler.
func NewLogsHandler(logs database.LogRepository) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// LogEntry is one recognition attempt in a /logs response.
type LogEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status"`
	PersonID   string    `json:"person_id,omitempty"`
	PersonName string    `json:"person_name,omitempty"`
	Confidence float64   `json:"confidence"`
	FaceJPEG   string    `json:"face_jpeg,omitempty"` // base64
}

// List handles GET /api/v1/logs?hours=N. Without the hours parameter the
// full history is returned, newest first.
func (h *LogsHandler) List(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if s := r.URL.Query().Get("hours"); s != "" {
		hours, err := strconv.Atoi(s)
		if err != nil || hours < 1 {
			respondError(w, http.StatusBadRequest, "hours must be a positive number")
			return
		}
		since = time.Now().Add(-time.Duration(hours) * time.Hour)
	}

	entries, err := h.logs.List(r.Context(), since)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load recognition logs")
		return
	}

	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		entry := LogEntry{
			ID:         e.ID,
			Timestamp:  e.Timestamp,
			Status:     e.Status,
			PersonID:   e.PersonID,
			PersonName: e.PersonName,
			Confidence: e.Confidence,
		}
		if len(e.FaceJPEG) > 0 {
			entry.FaceJPEG = base64.StdEncoding.EncodeToString(e.FaceJPEG)
		}
		out = append(out, entry)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count": len(out),
		"logs":  out,
	})
}
