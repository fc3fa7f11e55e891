// Package sqlite persists display preferences in an SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/couchcryptid/clockface/internal/domain"
)

const schema = `CREATE TABLE IF NOT EXISTS preferences (
	key         TEXT PRIMARY KEY,
	dark_mode   INTEGER NOT NULL,
	use_24_hour INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
)`

const busyRetries = 3

// PreferenceStore reads and writes DisplayMode records keyed by name.
type PreferenceStore struct {
	db *sql.DB
}

// Open opens (creating if needed) the preference database at path and
// applies the schema. ":memory:" opens a private in-memory database.
func Open(path string) (*PreferenceStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("prefs db: mkdir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("prefs db: open: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		schema,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("prefs db: %s: %w", firstLine(stmt), err)
		}
	}

	return &PreferenceStore{db: db}, nil
}

// Load returns the stored mode for key. The boolean is false when no
// record exists.
func (s *PreferenceStore) Load(ctx context.Context, key string) (domain.DisplayMode, bool, error) {
	var dark, use24 int
	err := s.db.QueryRowContext(ctx,
		`SELECT dark_mode, use_24_hour FROM preferences WHERE key = ?`, key,
	).Scan(&dark, &use24)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DisplayMode{}, false, nil
	}
	if err != nil {
		return domain.DisplayMode{}, false, fmt.Errorf("load preferences %q: %w", key, err)
	}
	return domain.DisplayMode{DarkMode: dark != 0, Use24Hour: use24 != 0}, true, nil
}

// Save writes the mode for key, replacing any previous record.
func (s *PreferenceStore) Save(ctx context.Context, key string, mode domain.DisplayMode) error {
	if key == "" {
		return errors.New("save preferences: empty key")
	}

	const upsert = `INSERT INTO preferences (key, dark_mode, use_24_hour, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			dark_mode = excluded.dark_mode,
			use_24_hour = excluded.use_24_hour,
			updated_at = excluded.updated_at`

	args := []any{key, boolInt(mode.DarkMode), boolInt(mode.Use24Hour), domain.Now().UnixMilli()}
	for i := range busyRetries {
		_, err := s.db.ExecContext(ctx, upsert, args...)
		if err == nil {
			return nil
		}
		if !isBusy(err) || i == busyRetries-1 {
			return fmt.Errorf("save preferences %q: %w", key, err)
		}
		if err := sleepCtx(ctx, time.Duration(100*(i+1))*time.Millisecond); err != nil {
			return fmt.Errorf("save preferences %q: %w", key, err)
		}
	}
	return nil
}

// Delete removes the record for key. Deleting a missing key is not an error.
func (s *PreferenceStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete preferences %q: %w", key, err)
	}
	return nil
}

// CheckReadiness pings the database.
func (s *PreferenceStore) CheckReadiness(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("prefs db: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *PreferenceStore) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
