package dedup

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the durable set of fingerprints of already-notified announcements.
//
// Lifecycle per run: Load once at start, Add in memory during the run, Persist
// once at the end. A crash before Persist re-delivers on the next invocation
// instead of losing history; duplicate notification is preferable to silently
// dropping a real event.
//
// The store fails soft everywhere: a missing or corrupt database file resets
// dedup memory with a warning, it never fails the run.
type Store struct {
	path string
	db   *sql.DB

	seen  map[string]struct{}
	added map[string]struct{}
}

// Open prepares the store at the given path. It never fails: when the file
// cannot be opened or migrated, the corrupt file is discarded and recreated,
// and if even that fails the store degrades to memory-only for this run.
func Open(path string) *Store {
	s := &Store{
		path:  path,
		seen:  make(map[string]struct{}),
		added: make(map[string]struct{}),
	}

	db, err := openDatabase(path)
	if err != nil {
		slog.Warn("Dedup store unreadable, resetting", "path", path, "error", err)

		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			slog.Warn("Failed to remove corrupt dedup store", "path", path, "error", removeErr)
		}
		db, err = openDatabase(path)
		if err != nil {
			slog.Warn("Dedup store unavailable, running memory-only", "path", path, "error", err)
			return s
		}
	}

	s.db = db
	return s
}

func openDatabase(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Load reads all persisted fingerprints into memory. On any read failure the
// store starts from an empty set with a warning; it never raises.
func (s *Store) Load() {
	if s.db == nil {
		return
	}

	rows, err := s.db.Query(`SELECT fingerprint FROM seen_announcements`)
	if err != nil {
		slog.Warn("Failed to load fingerprints, starting empty", "path", s.path, "error", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var fingerprint string
		if err := rows.Scan(&fingerprint); err != nil {
			slog.Warn("Failed to scan fingerprint row", "path", s.path, "error", err)
			continue
		}
		s.seen[fingerprint] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		slog.Warn("Fingerprint scan interrupted", "path", s.path, "error", err)
	}

	slog.Debug("Dedup store loaded", "path", s.path, "fingerprints", len(s.seen))
}

// Contains reports whether the fingerprint was already notified, in a past
// run or earlier in this one.
func (s *Store) Contains(fingerprint string) bool {
	_, ok := s.seen[fingerprint]
	return ok
}

// Add marks a fingerprint as notified. In-memory only until Persist is called.
func (s *Store) Add(fingerprint string) {
	s.seen[fingerprint] = struct{}{}
	s.added[fingerprint] = struct{}{}
}

// Size returns the number of known fingerprints.
func (s *Store) Size() int {
	return len(s.seen)
}

// Persist writes all fingerprints added during this run in one transaction,
// records the run timestamp, and prunes fingerprints first seen more than
// pruneDays ago (0 disables pruning).
func (s *Store) Persist(pruneDays int) error {
	if s.db == nil {
		slog.Warn("Dedup store is memory-only, skipping persist", "path", s.path)
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for fingerprint := range s.added {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO seen_announcements (fingerprint) VALUES (?)`, fingerprint); err != nil {
			return fmt.Errorf("failed to store fingerprint: %w", err)
		}
	}

	if pruneDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -pruneDays).UTC().Format("2006-01-02 15:04:05")
		if _, err := tx.Exec(
			`DELETE FROM seen_announcements WHERE first_seen < ?`, cutoff); err != nil {
			return fmt.Errorf("failed to prune fingerprints: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO run_meta (key, value) VALUES ('last_run_at', ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record run timestamp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	slog.Debug("Dedup store persisted", "path", s.path, "added", len(s.added), "total", len(s.seen))
	s.added = make(map[string]struct{})

	return nil
}

// LastRunAt returns the recorded timestamp of the previous completed run,
// or the zero time when none exists.
func (s *Store) LastRunAt() time.Time {
	if s.db == nil {
		return time.Time{}
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM run_meta WHERE key = 'last_run_at'`).Scan(&value)
	if err != nil {
		return time.Time{}
	}

	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// Close releases the underlying database handle.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
