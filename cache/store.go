// Package cache persists compiled expression programs so repeated runs
// skip parsing. Entries are keyed by a digest of the ordered expression
// list and stored as CBOR blobs in a local SQLite database.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chazu/glitch/pkg/expr"
)

// ErrMiss indicates the key has no usable cache entry.
var ErrMiss = errors.New("cache: miss")

const schema = `
CREATE TABLE IF NOT EXISTS programs (
	key        TEXT PRIMARY KEY,
	source     TEXT NOT NULL,
	data       BLOB NOT NULL,
	created_at INTEGER NOT NULL
);`

// Store is an on-disk compiled-program cache. Safe for concurrent use;
// database/sql serializes access and the busy timeout covers
// cross-process contention.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: creating directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: setting busy timeout: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DefaultPath returns the cache database location under the user's
// glitch directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cache: resolving home directory: %w", err)
	}
	return filepath.Join(home, ".glitch", "cache.db"), nil
}

// Key digests an ordered expression list. Expressions are
// NUL-separated before hashing so list boundaries are unambiguous.
func Key(sources []string) string {
	h := sha256.New()
	for _, src := range sources {
		h.Write([]byte(src))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Load fetches the compiled programs for a key. A missing entry returns
// ErrMiss. An entry that fails to decode is deleted and also reported
// as ErrMiss, so corruption heals itself on the next Save.
func (s *Store) Load(key string) ([][]expr.Instruction, error) {
	var data []byte
	err := s.db.QueryRow("SELECT data FROM programs WHERE key = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache: loading %s: %w", key, err)
	}

	progs, err := unmarshalPrograms(data)
	if err != nil {
		s.db.Exec("DELETE FROM programs WHERE key = ?", key)
		return nil, ErrMiss
	}
	return progs, nil
}

// Save stores compiled programs under a key, replacing any previous
// entry. The joined source text rides along for inspection with the
// sqlite CLI.
func (s *Store) Save(key string, sources []string, progs [][]expr.Instruction) error {
	data, err := marshalPrograms(progs)
	if err != nil {
		return fmt.Errorf("cache: marshal programs: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO programs (key, source, data, created_at) VALUES (?, ?, ?, ?)",
		key, strings.Join(sources, "\n"), data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("cache: saving %s: %w", key, err)
	}
	return nil
}
