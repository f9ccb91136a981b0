package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/facegate/facegate/internal/database"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PersonRepository implements database.PersonRepository on PostgreSQL.
type PersonRepository struct {
	pool *Pool
}

// NewPersonRepository creates a new person repository.
func NewPersonRepository(pool *Pool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

const personColumns = `id, name, age, id_card_number, nationality, profession, embedding, family, dim, photo_jpeg, created_at, updated_at`

func scanPerson(row interface{ Scan(...any) error }) (*database.Person, error) {
	var p database.Person
	var vec pgvector.Vector
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.IDCardNumber, &p.Nationality, &p.Profession,
		&vec, &p.Family, &p.Dim, &p.PhotoJPEG, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Embedding = vec.Slice()
	return &p, nil
}

// ListAll returns a snapshot of all registered people in insertion order.
// The returned slices are freshly allocated, so a gallery scan never sees
// concurrent mutation.
func (r *PersonRepository) ListAll(ctx context.Context) ([]database.Person, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT `+personColumns+`
		FROM people
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query people: %w", err)
	}
	defer rows.Close()

	var people []database.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// Get retrieves one person by ID.
func (r *PersonRepository) Get(ctx context.Context, id string) (*database.Person, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT `+personColumns+`
		FROM people
		WHERE id = $1
	`, id)

	p, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get person %s: %w", id, err)
	}
	return p, nil
}

// Insert stores a new person and returns the generated ID. A collision on
// the ID card number returns database.ErrConflict.
func (r *PersonRepository) Insert(ctx context.Context, p *database.Person) (string, error) {
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO people (id, name, age, id_card_number, nationality, profession, embedding, family, dim, photo_jpeg, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`, id, p.Name, p.Age, p.IDCardNumber, p.Nationality, p.Profession,
		pgvector.NewVector(p.Embedding), p.Family, p.Dim, p.PhotoJPEG)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return "", database.ErrConflict
		}
		return "", fmt.Errorf("insert person: %w", err)
	}
	return id, nil
}

// ReplaceEmbedding replaces a person's embedding wholesale, together with
// the registration photo it was computed from.
func (r *PersonRepository) ReplaceEmbedding(ctx context.Context, id string, embedding []float32, family string, dim int, photoJPEG []byte) error {
	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE people
		SET embedding = $2, family = $3, dim = $4, photo_jpeg = $5, updated_at = NOW()
		WHERE id = $1
	`, id, pgvector.NewVector(embedding), family, dim, photoJPEG)
	if err != nil {
		return fmt.Errorf("replace embedding for %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace embedding for %s: %w", id, err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Delete removes a person and their embedding.
func (r *PersonRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM people WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete person %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete person %s: %w", id, err)
	}
	if affected == 0 {
		return database.ErrNotFound
	}
	return nil
}

// Count returns the number of registered people.
func (r *PersonRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM people").Scan(&count)
	return count, err
}
