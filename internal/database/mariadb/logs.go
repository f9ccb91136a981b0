package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/facegate/facegate/internal/database"
)

// LogRepository implements database.LogRepository on MariaDB.
type LogRepository struct {
	pool *Pool
}

// NewLogRepository creates a new recognition log repository.
func NewLogRepository(pool *Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

// Add appends one recognition attempt.
func (r *LogRepository) Add(ctx context.Context, entry *database.RecognitionLog) error {
	var personID any
	if entry.PersonID != "" {
		personID = entry.PersonID
	}

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO recognition_logs (ts, status, person_id, person_name, confidence, face_jpeg)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ts, entry.Status, personID, entry.PersonName, entry.Confidence, entry.FaceJPEG)
	if err != nil {
		return fmt.Errorf("insert recognition log: %w", err)
	}
	return nil
}

// List returns logs at or after the given time, newest first.
func (r *LogRepository) List(ctx context.Context, since time.Time) ([]database.RecognitionLog, error) {
	query := `
		SELECT id, ts, status, person_id, person_name, confidence, face_jpeg
		FROM recognition_logs
	`
	var args []any
	if !since.IsZero() {
		query += " WHERE ts >= ?"
		args = append(args, since)
	}
	query += " ORDER BY ts DESC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recognition logs: %w", err)
	}
	defer rows.Close()

	var logs []database.RecognitionLog
	for rows.Next() {
		var entry database.RecognitionLog
		var personID, personName sql.NullString
		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Status, &personID,
			&personName, &entry.Confidence, &entry.FaceJPEG); err != nil {
			return nil, fmt.Errorf("scan recognition log: %w", err)
		}
		entry.PersonID = personID.String
		entry.PersonName = personName.String
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

// Count returns the total number of recognition attempts logged.
func (r *LogRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recognition_logs").Scan(&count)
	return count, err
}
