// Package database defines the persistence boundary: person and
// recognition-log records, the repository interfaces the rest of the
// system consumes, and the embedding blob codec shared by backends that
// store vectors as opaque bytes.
package database

import (
	"context"
	"errors"
	"time"

	"github.com/facegate/facegate/internal/match"
)

var (
	// ErrNotFound is returned when a person does not exist.
	ErrNotFound = errors.New("person not found")

	// ErrConflict is returned when an insert collides with an existing
	// person on the ID card number.
	ErrConflict = errors.New("person with this ID card number already exists")
)

// Recognition log statuses.
const (
	StatusRecognized = "recognized"
	StatusUnknown    = "unknown"
)

// Person is one registered identity: an opaque ID, descriptive
// attributes, and exactly one face embedding tagged with its family.
// Matching never inspects the attributes.
type Person struct {
	ID           string
	Name         string
	Age          int
	IDCardNumber string
	Nationality  string
	Profession   string
	Embedding    []float32
	Family       string
	Dim          int
	PhotoJPEG    []byte // registration face crop
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecognitionLog is one recognition attempt, recognized or not.
type RecognitionLog struct {
	ID         int64
	Timestamp  time.Time
	Status     string // StatusRecognized or StatusUnknown
	PersonID   string // empty when unknown
	PersonName string // empty when unknown
	Confidence float64
	FaceJPEG   []byte // detected face crop
}

// PersonRepository is the durable identity -> embedding store. ListAll
// returns an immutable snapshot in insertion order; callers scan the
// snapshot without holding any repository lock.
type PersonRepository interface {
	ListAll(ctx context.Context) ([]Person, error)
	Get(ctx context.Context, id string) (*Person, error)
	Insert(ctx context.Context, p *Person) (string, error)
	ReplaceEmbedding(ctx context.Context, id string, embedding []float32, family string, dim int, photoJPEG []byte) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// LogRepository records recognition attempts.
type LogRepository interface {
	Add(ctx context.Context, entry *RecognitionLog) error
	List(ctx context.Context, since time.Time) ([]RecognitionLog, error)
	Count(ctx context.Context) (int, error)
}

// ToGallery converts a person snapshot into the gallery the matcher scans.
// Order is preserved, so the matcher's first-seen tie-break follows
// repository insertion order.
func ToGallery(people []Person) []match.GalleryEntry {
	gallery := make([]match.GalleryEntry, 0, len(people))
	for i := range people {
		p := &people[i]
		if len(p.Embedding) == 0 {
			continue
		}
		gallery = append(gallery, match.GalleryEntry{
			PersonID:  p.ID,
			Name:      p.Name,
			Embedding: p.Embedding,
			Family:    p.Family,
		})
	}
	return gallery
}
