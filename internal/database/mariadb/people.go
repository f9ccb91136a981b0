package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/facegate/facegate/internal/database"
)

// duplicateEntry is the MySQL/MariaDB error number for unique key violations.
const duplicateEntry = 1062

// PersonRepository implements database.PersonRepository on MariaDB.
type PersonRepository struct {
	pool *Pool
}

// NewPersonRepository creates a new person repository.
func NewPersonRepository(pool *Pool) *PersonRepository {
	return &PersonRepository{pool: pool}
}

func scanPerson(row interface{ Scan(...any) error }) (*database.Person, error) {
	var p database.Person
	var blob []byte
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.IDCardNumber, &p.Nationality, &p.Profession,
		&blob, &p.PhotoJPEG, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}

	family, embedding, err := database.DecodeEmbedding(blob)
	if err != nil {
		return nil, fmt.Errorf("decode embedding for person %s: %w", p.ID, err)
	}
	p.Embedding = embedding
	p.Family = family
	p.Dim = len(embedding)
	return &p, nil
}

// ListAll returns a snapshot of all registered people in insertion order.
func (r *PersonRepository) ListAll(ctx context.Context) ([]database.Person, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, age, id_card_number, nationality, profession, embedding, photo_jpeg, created_at, updated_at
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
			return nil, err
		}
		people = append(people, *p)
	}
	return people, rows.Err()
}

// Get retrieves one person by ID.
func (r *PersonRepository) Get(ctx context.Context, id string) (*database.Person, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, age, id_card_number, nationality, profession, embedding, photo_jpeg, created_at, updated_at
		FROM people
		WHERE id = ?
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

// Insert stores a new person and returns the generated ID.
func (r *PersonRepository) Insert(ctx context.Context, p *database.Person) (string, error) {
	blob, err := database.EncodeEmbedding(p.Family, p.Embedding)
	if err != nil {
		return "", err
	}

	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err = r.pool.db.ExecContext(ctx, `
		INSERT INTO people (id, name, age, id_card_number, nationality, profession, embedding, photo_jpeg)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, p.Name, p.Age, p.IDCardNumber, p.Nationality, p.Profession, blob, p.PhotoJPEG)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateEntry {
			return "", database.ErrConflict
		}
		return "", fmt.Errorf("insert person: %w", err)
	}
	return id, nil
}

// ReplaceEmbedding replaces a person's embedding wholesale.
func (r *PersonRepository) ReplaceEmbedding(ctx context.Context, id string, embedding []float32, family string, dim int, photoJPEG []byte) error {
	blob, err := database.EncodeEmbedding(family, embedding)
	if err != nil {
		return err
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE people SET embedding = ?, photo_jpeg = ?, updated_at = NOW(6) WHERE id = ?
	`, blob, photoJPEG, id)
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
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
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
