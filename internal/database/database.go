package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions stored in the deletions table
const (
	ActionDelete = "DELETE" // target removed
	ActionError  = "ERROR"  // removal failed part way
	ActionSkip   = "SKIP"   // refused before anything was removed
)

// HistoryDB manages the SQLite database for deletion history
type HistoryDB struct {
	db *sql.DB
}

// Record represents a single delete target outcome
type Record struct {
	ID           int64
	Timestamp    time.Time
	Action       string
	Command      string // command line as typed, e.g. "delete --glob=*.tmp build"
	Path         string
	FileName     string
	ObjectType   string // file, directory, symlink, missing
	Entries      int    // entries removed under this target
	Size         int64  // bytes removed under this target
	ErrorMessage string
}

// NewHistoryDB creates a new database connection and initializes schema
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing, _busy_timeout waits out
	// a concurrent coco-history reader
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// Ping does not create the file, a query does
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// coco and coco-history may have the file open at the same time
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	hdb := &HistoryDB{db: db}
	if err = hdb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return hdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (h *HistoryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS deletions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		command TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		object_type TEXT NOT NULL,
		entries INTEGER NOT NULL DEFAULT 0,
		size INTEGER NOT NULL DEFAULT 0,
		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON deletions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON deletions(action);
	CREATE INDEX IF NOT EXISTS idx_path ON deletions(path);
	CREATE INDEX IF NOT EXISTS idx_size ON deletions(size);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := h.db.Exec(schema)
	return err
}

// RecordDeletion inserts a delete target outcome. A zero Timestamp is
// stamped with the current time and an empty FileName is derived from Path.
func (h *HistoryDB) RecordDeletion(r Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now()
	}
	if r.FileName == "" {
		r.FileName = filepath.Base(r.Path)
	}

	var errMsg sql.NullString
	if r.ErrorMessage != "" {
		errMsg = sql.NullString{String: r.ErrorMessage, Valid: true}
	}

	query := `
	INSERT INTO deletions (
		timestamp, action, command, path, file_name, object_type,
		entries, size, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.db.Exec(
		query,
		r.Timestamp,
		r.Action,
		r.Command,
		r.Path,
		r.FileName,
		r.ObjectType,
		r.Entries,
		r.Size,
		errMsg,
	)
	if err != nil {
		return fmt.Errorf("record %s %s: %w", r.Action, r.Path, err)
	}
	return nil
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Vacuum optimizes the database (run after pruning)
func (h *HistoryDB) Vacuum() error {
	_, err := h.db.Exec("VACUUM")
	return err
}

// DatabaseInfo describes the history file itself
type DatabaseInfo struct {
	TotalRecords int64
	SizeBytes    int64
	Oldest       time.Time
	Newest       time.Time
}

// GetDatabaseInfo returns record count, file size and covered time range
func (h *HistoryDB) GetDatabaseInfo() (*DatabaseInfo, error) {
	info := &DatabaseInfo{}

	if err := h.db.QueryRow("SELECT COUNT(*) FROM deletions").Scan(&info.TotalRecords); err != nil {
		return nil, err
	}

	var pageCount, pageSize int64
	if err := h.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, err
	}
	if err := h.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, err
	}
	info.SizeBytes = pageCount * pageSize

	// MIN/MAX lose the DATETIME column type, so parse the stored text
	var oldest, newest sql.NullString
	err := h.db.QueryRow("SELECT MIN(timestamp), MAX(timestamp) FROM deletions").Scan(&oldest, &newest)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	info.Oldest = parseTimestamp(oldest)
	info.Newest = parseTimestamp(newest)

	return info, nil
}

// timestampFormats lists the layouts go-sqlite3 may have written
var timestampFormats = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
}

func parseTimestamp(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s.String); err == nil {
			return t
		}
	}
	return time.Time{}
}
