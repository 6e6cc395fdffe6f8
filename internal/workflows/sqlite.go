package workflows

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	apierrors "github.com/diogo/simchat/internal/errors"
	"github.com/diogo/simchat/internal/models"
)

// DatabaseFile is the sqlite file name inside the data directory
const DatabaseFile = "simchat.db"

// SQLiteStore keeps workflows in a sqlite table
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore opens (creating if needed) <dataDir>/simchat.db
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return OpenSQLiteStore(filepath.Join(dataDir, DatabaseFile))
}

// OpenSQLiteStore opens a sqlite store at an explicit DSN, e.g. ":memory:"
func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workflows (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		last_modified INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workflows_last_modified ON workflows(last_modified);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Load reads all rows ordered by last_modified
func (s *SQLiteStore) Load(ctx context.Context) ([]models.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, apierrors.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, last_modified FROM workflows ORDER BY last_modified, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer rows.Close()

	var out []models.Workflow
	for rows.Next() {
		var (
			wf    models.Workflow
			nanos int64
		)
		if err := rows.Scan(&wf.ID, &wf.Name, &wf.Color, &nanos); err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}
		wf.LastModified = time.Unix(0, nanos).UTC()
		out = append(out, wf)
	}

	return out, rows.Err()
}

// Save upserts wf
func (s *SQLiteStore) Save(ctx context.Context, wf models.Workflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apierrors.ErrStoreClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, color, last_modified) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			last_modified = excluded.last_modified`,
		wf.ID, wf.Name, wf.Color, wf.LastModified.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// Delete removes the row for id
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apierrors.ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", apierrors.ErrWorkflowNotFound, id)
	}
	return nil
}

// Close releases the database
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
