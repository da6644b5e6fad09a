package models

import (
	"database/sql"
	"sync"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"github.com/vmihailenco/msgpack/v5"
)

// ============================================================================
// Key-Value Persistence
//
// The store and sync client persist whole snapshots rather than rows, so
// persistence is a small key-value table in DuckDB with msgpack-encoded
// values. msgpack keeps snapshots compact and round-trips time.Time values
// without the formatting ambiguity of JSON.
// ============================================================================

var (
	db   *sql.DB
	dbMu sync.Mutex // serializes writes; DuckDB handles concurrent reads
)

// Persistence keys. Everything the app remembers between runs lives under
// one of these.
const (
	KVQuotes         = "quotes"          // full collection snapshot
	KVRemoteFallback = "remote_fallback" // last-known-good remote pull
	KVLastCategory   = "last_category"   // category filter across sessions
	KVLastQuote      = "last_quote"      // last-viewed quote id
)

const DDLCreateKVTable = `
CREATE TABLE IF NOT EXISTS kv (
    key         VARCHAR PRIMARY KEY,
    value       BLOB,
    updated_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitDB opens the DuckDB database at path and ensures the kv table exists.
func InitDB(path string) error {
	var err error
	db, err = sql.Open("duckdb", path)
	if err != nil {
		return serr.Wrap(err, "failed to open database")
	}

	if _, err = db.Exec(DDLCreateKVTable); err != nil {
		return serr.Wrap(err, "failed to create kv table")
	}

	logger.Info("Database initialized", "path", path)
	return nil
}

// InitTestDB opens a database for tests. An empty path gives DuckDB's
// in-memory mode so tests don't leave files behind.
func InitTestDB(path string) error {
	return InitDB(path)
}

// CloseDB closes the database connection.
func CloseDB() {
	if db != nil {
		db.Close()
		db = nil
	}
}

// KVSet msgpack-encodes v and upserts it under key.
func KVSet(key string, v interface{}) error {
	data, err := msgpack.Marshal(v)
	if err != nil {
		return serr.Wrap(err, "failed to encode kv value", "key", key)
	}

	dbMu.Lock()
	defer dbMu.Unlock()

	_, err = db.Exec(
		`INSERT OR REPLACE INTO kv (key, value, updated_at) VALUES (?, ?, ?)`,
		key, data, time.Now(),
	)
	if err != nil {
		return serr.Wrap(err, "failed to write kv value", "key", key)
	}
	return nil
}

// KVGet decodes the value under key into out. Returns false when the key
// is absent or the stored bytes do not decode — callers treat both the
// same way (fall back to defaults), so corrupt data never surfaces as an
// error, only as a log line.
func KVGet(key string, out interface{}) bool {
	var data []byte
	err := db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		logger.LogErr(err, "failed to read kv value", "key", key)
		return false
	}

	if err := msgpack.Unmarshal(data, out); err != nil {
		logger.LogErr(err, "failed to decode kv value, treating as absent", "key", key)
		return false
	}
	return true
}

// KVDelete removes a key. Missing keys are not an error.
func KVDelete(key string) error {
	dbMu.Lock()
	defer dbMu.Unlock()

	_, err := db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return serr.Wrap(err, "failed to delete kv value", "key", key)
	}
	return nil
}
