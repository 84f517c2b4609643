// Package tagcache persists POS tag results in a local SQLite database.
//
// Tagging a short line is either a model evaluation or a network round
// trip; the same salutations and contact fragments recur across a mailbox,
// so results are memoized keyed by (model, line text). The cache is an
// optimization only — a cold or missing cache never changes classification.
package tagcache

import (
	"context"
	"database/sql"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	"github.com/inboxtools/sigscrub/internal/tagger"
)

// DefaultPath is the default cache database location.
const DefaultPath = "~/.sigscrub/tags.db"

const schema = `
CREATE TABLE IF NOT EXISTS tags (
	key        TEXT PRIMARY KEY,
	model      TEXT NOT NULL,
	label      TEXT NOT NULL,
	confidence REAL NOT NULL,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tags_model ON tags(model);
`

// Cache is a SQLite-backed tag store.
type Cache struct {
	db   *sql.DB
	path string
}

// Open opens (and if needed creates) the cache database at path.
// Pass ":memory:" for an in-memory cache (testing).
func Open(path string) (*Cache, error) {
	if path == "" {
		path = ExpandPath(DefaultPath)
	}

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging cache database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("setting pragma %q: %w", p, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get looks up a cached tag. The second return is false on a miss.
func (c *Cache) Get(ctx context.Context, model, text string) (tagger.Tag, bool, error) {
	var tag tagger.Tag
	row := c.db.QueryRowContext(ctx,
		"SELECT label, confidence FROM tags WHERE key = ?", key(model, text))
	if err := row.Scan(&tag.Label, &tag.Confidence); err != nil {
		if err == sql.ErrNoRows {
			return tagger.Tag{}, false, nil
		}
		return tagger.Tag{}, false, fmt.Errorf("reading cached tag: %w", err)
	}
	return tag, true, nil
}

// Put stores a tag result, overwriting any previous entry for the line.
func (c *Cache) Put(ctx context.Context, model, text string, tag tagger.Tag) error {
	_, err := c.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO tags (key, model, label, confidence, created_at) VALUES (?, ?, ?, ?, ?)",
		key(model, text), model, string(tag.Label), tag.Confidence, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("writing cached tag: %w", err)
	}
	return nil
}

// Count returns the number of cached entries, for stats output.
func (c *Cache) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting cached tags: %w", err)
	}
	return n, nil
}

// key derives the primary key for a (model, text) pair. blake3 keeps long
// lines from bloating the index and avoids storing raw message text as keys.
func key(model, text string) string {
	sum := blake3.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// ExpandPath expands a leading ~ to the user home directory.
func ExpandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}
