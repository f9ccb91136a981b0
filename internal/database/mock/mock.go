// Package mock provides in-memory implementations of the repository
// interfaces for tests and for running without a database.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/facegate/facegate/internal/database"
)

// PersonRepository is an in-memory implementation of
// database.PersonRepository. Insertion order is preserved.
type PersonRepository struct {
	mu     sync.RWMutex
	people []database.Person

	// Error injection
	ListAllError error
	GetError     error
	InsertError  error
	ReplaceError error
	DeleteError  error
}

// NewPersonRepository creates an empty in-memory person repository.
func NewPersonRepository() *PersonRepository {
	return &PersonRepository{}
}

// ListAll returns a copy of all people in insertion order.
func (m *PersonRepository) ListAll(ctx context.Context) ([]database.Person, error) {
	if m.ListAllError != nil {
		return nil, m.ListAllError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make([]database.Person, len(m.people))
	copy(snapshot, m.people)
	for i := range snapshot {
		emb := make([]float32, len(snapshot[i].Embedding))
		copy(emb, snapshot[i].Embedding)
		snapshot[i].Embedding = emb
	}
	return snapshot, nil
}

// Get retrieves one person by ID.
func (m *PersonRepository) Get(ctx context.Context, id string) (*database.Person, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.people {
		if m.people[i].ID == id {
			p := m.people[i]
			return &p, nil
		}
	}
	return nil, database.ErrNotFound
}

// Insert stores a new person, enforcing ID card number uniqueness.
func (m *PersonRepository) Insert(ctx context.Context, p *database.Person) (string, error) {
	if m.InsertError != nil {
		return "", m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.people {
		if m.people[i].IDCardNumber == p.IDCardNumber {
			return "", database.ErrConflict
		}
	}

	stored := *p
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.people = append(m.people, stored)
	return stored.ID, nil
}

// ReplaceEmbedding replaces a person's embedding wholesale.
func (m *PersonRepository) ReplaceEmbedding(ctx context.Context, id string, embedding []float32, family string, dim int, photoJPEG []byte) error {
	if m.ReplaceError != nil {
		return m.ReplaceError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.people {
		if m.people[i].ID == id {
			m.people[i].Embedding = embedding
			m.people[i].Family = family
			m.people[i].Dim = dim
			m.people[i].PhotoJPEG = photoJPEG
			m.people[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return database.ErrNotFound
}

// Delete removes a person.
func (m *PersonRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.people {
		if m.people[i].ID == id {
			m.people = append(m.people[:i], m.people[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

// Count returns the number of registered people.
func (m *PersonRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.people), nil
}

// LogRepository is an in-memory implementation of database.LogRepository.
type LogRepository struct {
	mu   sync.RWMutex
	logs []database.RecognitionLog

	AddError  error
	ListError error
}

// NewLogRepository creates an empty in-memory log repository.
func NewLogRepository() *LogRepository {
	return &LogRepository{}
}

// Add appends one recognition attempt.
func (m *LogRepository) Add(ctx context.Context, entry *database.RecognitionLog) error {
	if m.AddError != nil {
		return m.AddError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *entry
	stored.ID = int64(len(m.logs) + 1)
	if stored.Timestamp.IsZero() {
		stored.Timestamp = time.Now()
	}
	m.logs = append(m.logs, stored)
	return nil
}

// List returns logs at or after the given time, newest first.
func (m *LogRepository) List(ctx context.Context, since time.Time) ([]database.RecognitionLog, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []database.RecognitionLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if since.IsZero() || !m.logs[i].Timestamp.Before(since) {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

// Count returns the total number of logged attempts.
func (m *LogRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.logs), nil
}
