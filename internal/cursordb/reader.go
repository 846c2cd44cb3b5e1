// Package cursordb provides read-only access to Cursor's state.vscdb
// key-value store (SQLite). The store belongs to Cursor; this package never
// writes to it and never holds long-lived locks.
package cursordb

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Key prefixes used by Cursor's global cursorDiskKV table.
const (
	ContainerPrefix = "composerData:"
	FragmentPrefix  = "bubbleId:"
	ContextPrefix   = "checkpointId:"
)

// Row is one raw key-value pair from the store.
type Row struct {
	Key   string
	Value string
}

// Reader issues read-only queries against a state.vscdb file.
type Reader struct {
	conn *sql.DB
	path string
}

// Open opens the store at path read-only. A missing file is not an error:
// the returned Reader yields empty results until the file appears.
func Open(path string) (*Reader, error) {
	r := &Reader{path: path}
	if !r.storeExists() {
		return r, nil
	}
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Reader) storeExists() bool {
	if r.path == "" {
		return false
	}
	_, err := os.Stat(r.path)
	return err == nil
}

func (r *Reader) connect() error {
	// mode=ro keeps us from ever taking a write lock on Cursor's database;
	// the busy timeout covers Cursor's own short write transactions.
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=3000", r.path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("cursordb: open %s: %w", r.path, err)
	}
	conn.SetMaxOpenConns(1)
	r.conn = conn
	return nil
}

// ensureConn lazily (re)connects if the store file appeared after Open.
func (r *Reader) ensureConn() (*sql.DB, bool, error) {
	if r.conn != nil {
		return r.conn, true, nil
	}
	if !r.storeExists() {
		return nil, false, nil
	}
	if err := r.connect(); err != nil {
		return nil, false, err
	}
	return r.conn, true, nil
}

// ListByPrefix returns every (key, value) row in cursorDiskKV whose key
// starts with prefix. A missing store yields an empty result, not an error.
func (r *Reader) ListByPrefix(prefix string) ([]Row, error) {
	conn, ok, err := r.ensureConn()
	if err != nil || !ok {
		return nil, err
	}

	// Escape LIKE wildcards so a literal prefix never over-matches.
	pattern := escapeLike(prefix) + "%"
	rows, err := conn.Query(
		`SELECT key, value FROM cursorDiskKV WHERE key LIKE ? ESCAPE '\'`, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("cursordb: list %q: %w", prefix, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Row
	for rows.Next() {
		var row Row
		var value sql.NullString
		if err := rows.Scan(&row.Key, &value); err != nil {
			return nil, fmt.Errorf("cursordb: scan row: %w", err)
		}
		row.Value = value.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// Get returns the value stored under key, or ok=false if the key (or the
// store itself) is absent.
func (r *Reader) Get(key string) (string, bool, error) {
	conn, ok, err := r.ensureConn()
	if err != nil || !ok {
		return "", false, err
	}

	var value sql.NullString
	err = conn.QueryRow(`SELECT value FROM cursorDiskKV WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cursordb: get %q: %w", key, err)
	}
	return value.String, true, nil
}

// Close releases the connection. Safe on a Reader whose store never existed.
func (r *Reader) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// Path returns the store path this reader points at.
func (r *Reader) Path() string {
	return r.path
}

// FragmentKey builds the point-lookup key for one fragment body.
func FragmentKey(containerID, fragmentID string) string {
	return FragmentPrefix + containerID + ":" + fragmentID
}

// ContextKey builds the point-lookup key for one fragment's layout record.
func ContextKey(containerID, fragmentID string) string {
	return ContextPrefix + containerID + ":" + fragmentID
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
