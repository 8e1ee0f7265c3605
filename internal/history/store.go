// Package history provides SQLite-backed storage for past venue risk
// observations and plan outcomes. The critic consults it so a venue that
// burned a group before gets flagged before it burns another one.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// RiskEvent is one recorded problem at a venue: a cancellation, an access
// failure, a pricing surprise. Severity matches the review stage's scale.
type RiskEvent struct {
	ID         string    // Unique identifier
	VenueID    string    // Venue the event happened at
	EventType  string    // closure, overcrowding, pricing, access, other
	Severity   string    // low, medium, high
	Detail     string    // Free-text description
	ObservedAt time.Time // When the event was observed
}

// PlanRecord is the outcome of one completed planning run.
type PlanRecord struct {
	RunID      string    // Unique run identifier
	Activity   string    // Parsed activity
	Degraded   bool      // Whether the run finished degraded
	VetoReason string    // Last veto reason, if any
	Retries    int       // Discovery retries consumed
	CreatedAt  time.Time // When the run finished
}

// Store provides SQLite-backed storage for risk events and plan records.
type Store struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// DefaultDBPath returns the path to the history database.
func DefaultDBPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, _ := os.UserHomeDir()
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "pathfinder", "history.db")
}

// NewStore opens a Store at the given database path.
// It creates the parent directories if they don't exist.
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode so a streaming run can read while another run writes.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &Store{
		db:     conn,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the path to the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// formatTime formats a time.Time for SQLite storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime parses a time string from SQLite.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
