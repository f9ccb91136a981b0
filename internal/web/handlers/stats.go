package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/facegate/facegate/internal/database"
)

const statsCacheTTL = time.Minute

// statsCache holds cached stats with expiry.
type statsCache struct {
	mu        sync.RWMutex
	data      *StatsResponse
	expiresAt time.Time
}

func (c *statsCache) get() (*StatsResponse, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || time.Now().After(c.expiresAt) {
		return nil, false
	}
	return c.data, true
}

func (c *statsCache) set(data *StatsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expiresAt = time.Now().Add(statsCacheTTL)
}

func (c *statsCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
}

// StatsHandler handles statistics endpoints.
type StatsHandler struct {
	people  database.PersonRepository
	logs    database.LogRepository
	indexes *database.IndexSet
	backend string // active embedding family
	cache   statsCache
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(people database.PersonRepository, logs database.LogRepository, indexes *database.IndexSet, backend string) *StatsHandler {
	return &StatsHandler{
		people:  people,
		logs:    logs,
		indexes: indexes,
		backend: backend,
	}
}

// InvalidateCache clears the cached stats so the next request fetches fresh data.
func (h *StatsHandler) InvalidateCache() {
	h.cache.invalidate()
}

// StatsResponse represents the statistics response.
type StatsResponse struct {
	TotalPeople   int            `json:"total_people"`
	TotalAttempts int            `json:"total_attempts"`
	IndexedPeople map[string]int `json:"indexed_people"`
	ActiveBackend string         `json:"active_backend"`
}

// Get returns counts of people and recognition attempts.
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if cached, ok := h.cache.get(); ok {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	peopleCount, err := h.people.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count people")
		return
	}
	attempts, err := h.logs.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count recognition attempts")
		return
	}

	stats := &StatsResponse{
		TotalPeople:   peopleCount,
		TotalAttempts: attempts,
		IndexedPeople: h.indexes.Sizes(),
		ActiveBackend: h.backend,
	}

	h.cache.set(stats)
	respondJSON(w, http.StatusOK, stats)
}
