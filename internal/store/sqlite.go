package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// SQLiteStore implements ReportStore using modernc.org/sqlite (pure Go, no
// CGO). Reports are stored as JSON documents.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates a SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode for concurrent readers during fleet runs
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		file_name   TEXT PRIMARY KEY,
		analyzed_at TEXT NOT NULL,
		report      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_analyzed_at ON reports(analyzed_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Put inserts or replaces the report of report.FileName.
func (s *SQLiteStore) Put(ctx context.Context, report *models.DeviceReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report %q: %w", report.FileName, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (file_name, analyzed_at, report) VALUES (?, ?, ?)
		 ON CONFLICT(file_name) DO UPDATE SET analyzed_at = excluded.analyzed_at, report = excluded.report`,
		report.FileName, report.AnalyzedAt.UTC().Format(time.RFC3339Nano), string(data),
	)
	if err != nil {
		return fmt.Errorf("store report %q: %w", report.FileName, err)
	}
	return nil
}

// Get returns the report stored under fileName or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, fileName string) (*models.DeviceReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM reports WHERE file_name = ?`, fileName).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report %q: %w", fileName, err)
	}

	var r models.DeviceReport
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("decode report %q: %w", fileName, err)
	}
	return &r, nil
}
