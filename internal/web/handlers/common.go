// Package handlers implements the HTTP API: registration, recognition,
// person management, recognition logs, and stats.
package handlers

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/facegate/facegate/internal/imaging"
)

// maxUploadBytes caps multipart photo uploads.
const maxUploadBytes = 32 << 20

// errInvalidRequestBody is a shared error message for unusable uploads.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeUploadedImage reads the named multipart file field and decodes it.
func decodeUploadedImage(r *http.Request, field string) (image.Image, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", imaging.ErrInvalidImage, err)
	}
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%w: missing %q file field", imaging.ErrInvalidImage, field)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", imaging.ErrInvalidImage, err)
	}
	return imaging.Decode(data)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
