// Package mariadb implements the person and log repositories on MariaDB.
// Embeddings are stored as opaque blobs tagged with family and dimension
// (see database.EncodeEmbedding), since MariaDB has no vector column type.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	// Timestamps scan into time.Time only with parseTime enabled.
	if !strings.Contains(dsn, "?") {
		dsn += "?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// Migrate creates the schema if it does not exist.
func (p *Pool) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS people (
			id CHAR(36) PRIMARY KEY,
			name TEXT NOT NULL,
			age INT NOT NULL DEFAULT 0,
			id_card_number VARCHAR(128) NOT NULL,
			nationality TEXT NOT NULL,
			profession TEXT NOT NULL,
			embedding MEDIUMBLOB NOT NULL,
			photo_jpeg MEDIUMBLOB,
			created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			UNIQUE KEY people_id_card_number_idx (id_card_number)
		)`,
		`CREATE TABLE IF NOT EXISTS recognition_logs (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			ts TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			status VARCHAR(32) NOT NULL,
			person_id CHAR(36),
			person_name TEXT,
			confidence DOUBLE NOT NULL DEFAULT 0,
			face_jpeg MEDIUMBLOB,
			KEY recognition_logs_ts_idx (ts)
		)`,
	}
	for _, stmt := range statements {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate MariaDB schema: %w", err)
		}
	}
	return nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}
