package audit

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"

	domain "github.com/oshokin/guardian/internal/domain/confirmation"
)

// schema is applied statement by statement on open.
//
//nolint:gochecknoglobals // Read-only migration list.
var schema = []string{`
CREATE TABLE IF NOT EXISTS audit_records (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	source_id   TEXT NOT NULL DEFAULT '',
	result      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	outcome     TEXT NOT NULL DEFAULT '',
	ended_at    TEXT NOT NULL DEFAULT '',
	record      JSON NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS audit_records_session_id ON audit_records (session_id)`,
}

// SQLiteRepository stores records in a SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens or creates the database at path.
func NewSQLiteRepository(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open audit database: %w", err)
	}

	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, statement := range schema {
		if _, err = db.ExecContext(ctx, statement); err != nil {
			_ = db.Close()

			return nil, fmt.Errorf("migrate audit database: %w", err)
		}
	}

	return &SQLiteRepository{db: db}, nil
}

// Append inserts rec.
func (r *SQLiteRepository) Append(ctx context.Context, rec *domain.Record) error {
	s, err := Encode(rec)
	if err != nil {
		return err
	}

	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	var kind string
	if rec.Outcome != nil {
		kind = string(rec.Outcome.Kind)
	}

	const query = `INSERT INTO audit_records (session_id, source_id, result, reason, outcome, ended_at, record)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	if _, err = r.db.ExecContext(ctx, query,
		rec.SessionID, rec.SourceID, string(rec.Result), rec.Reason, kind, formatTime(rec.EndedAt), string(data),
	); err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}

	return nil
}

// List returns the newest records first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		// SQLite treats a negative limit as no limit.
		limit = -1
	}

	rows, err := r.db.QueryContext(ctx, `SELECT record FROM audit_records ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}

	defer func() { _ = rows.Close() }()

	var records []*domain.Record

	for rows.Next() {
		var raw string
		if err = rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		var s structpb.Struct
		if err = protojson.Unmarshal([]byte(raw), &s); err != nil {
			return nil, fmt.Errorf("decode audit record: %w", err)
		}

		rec, decodeErr := Decode(&s)
		if decodeErr != nil {
			return nil, decodeErr
		}

		records = append(records, rec)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit records: %w", err)
	}

	return records, nil
}

// Close closes the database.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
