package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
)

// SQLiteVideoStore implements VideoStore on a local SQLite database.
// WAL mode lets search requests read metadata while a loader writes.
type SQLiteVideoStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// Verify interface implementation at compile time
var _ VideoStore = (*SQLiteVideoStore)(nil)

// validateVideoDBIntegrity checks if the metadata database is valid before
// opening. Returns nil if valid, error describing corruption if not.
func validateVideoDBIntegrity(path string) error {
	// Check if database file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil // Database doesn't exist, will be created
	}

	// Try to open read-only for validation
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("cannot open for validation: %w", err)
	}
	defer db.Close()

	// Quick integrity check
	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("integrity check failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database corrupted: %s", result)
	}

	// Schema must be readable; a missing videos table is just a fresh
	// database and gets created on open.
	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master
                       WHERE type='table' AND name='videos'`).Scan(&count)
	if err != nil {
		return fmt.Errorf("cannot query schema: %w", err)
	}

	return nil
}

// NewSQLiteVideoStore opens or creates the metadata database at path.
// If path is empty, creates an in-memory store for testing.
// Uses WAL mode for concurrent multi-process access, with integrity
// validation and auto-recovery from corruption before opening.
func NewSQLiteVideoStore(path string) (*SQLiteVideoStore, error) {
	var dsn string
	if path == "" {
		// In-memory store for testing
		dsn = ":memory:"
	} else {
		// Create directory if needed
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}

		// Validate integrity before opening
		if validErr := validateVideoDBIntegrity(path); validErr != nil {
			slog.Warn("video_db_corrupted",
				slog.String("path", path),
				slog.String("error", validErr.Error()))

			// Auto-clear corrupted database
			if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, fmt.Errorf("video database corrupted at %s and cannot remove: %w (original error: %v)", path, removeErr, validErr)
			}
			// Also remove WAL and SHM files
			_ = os.Remove(path + "-wal")
			_ = os.Remove(path + "-shm")

			slog.Info("video_db_cleared",
				slog.String("path", path),
				slog.String("reason", "corruption detected, please reload metadata"))
		}

		// WAL mode for concurrent access
		// _busy_timeout handles lock contention gracefully
		dsn = path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Single writer to prevent lock contention
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0) // Don't expire connections

	// Set pragmas via statements (DSN params may be ignored by modernc.org/sqlite)
	pragmas := []string{
		"PRAGMA journal_mode = WAL",   // WAL mode for concurrent access
		"PRAGMA busy_timeout = 5000",  // 5 second timeout for lock contention
		"PRAGMA synchronous = NORMAL", // Balance durability and performance
		"PRAGMA cache_size = -65536",  // 64MB cache (negative = KB)
		"PRAGMA temp_store = MEMORY",  // Keep temp tables in memory
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &SQLiteVideoStore{
		db:   db,
		path: path,
	}

	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the videos table and supporting tables.
func (s *SQLiteVideoStore) initSchema() error {
	schema := `
	-- Schema version tracking
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);

	-- Video metadata keyed by video id; tags holds a JSON array
	CREATE TABLE IF NOT EXISTS videos (
		video_id      TEXT PRIMARY KEY,
		title         TEXT NOT NULL DEFAULT '',
		channel_id    TEXT NOT NULL DEFAULT '',
		channel_name  TEXT NOT NULL DEFAULT '',
		upload_date   INTEGER NOT NULL DEFAULT 0,
		duration      REAL NOT NULL DEFAULT 0,
		views         INTEGER NOT NULL DEFAULT 0,
		likes         INTEGER NOT NULL DEFAULT 0,
		comment_count INTEGER NOT NULL DEFAULT 0,
		tags          TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_videos_upload_date ON videos(upload_date);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := s.db.Exec(schema)
	return err
}

// GetVideos multi-gets metadata by video id. Unknown ids are absent from
// the returned map.
func (s *SQLiteVideoStore) GetVideos(ctx context.Context, ids []string) (map[string]VideoMeta, error) {
	if len(ids) == 0 {
		return map[string]VideoMeta{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, fmt.Errorf("store is closed")
	}

	// Build parameterized query for batch fetch
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT video_id, title, channel_id, channel_name,
	                      upload_date, duration, views, likes, comment_count, tags
	                      FROM videos WHERE video_id IN (%s)`,
		strings.Join(placeholders, ","))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := make(map[string]VideoMeta, len(ids))
	for rows.Next() {
		var v VideoMeta
		var tags string
		if err := rows.Scan(&v.VideoID, &v.Title, &v.ChannelID, &v.ChannelName,
			&v.UploadDate, &v.Duration, &v.Views, &v.Likes, &v.CommentCount, &tags); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if tags != "" {
			// Unreadable tags degrade to none; the row is still useful
			if err := json.Unmarshal([]byte(tags), &v.Tags); err != nil {
				slog.Warn("video_tags_unreadable",
					slog.String("video_id", v.VideoID),
					slog.String("error", err.Error()))
				v.Tags = nil
			}
		}
		videos[v.VideoID] = v
	}

	return videos, rows.Err()
}

// PutVideos upserts metadata rows in one transaction.
func (s *SQLiteVideoStore) PutVideos(ctx context.Context, videos []VideoMeta) error {
	if len(videos) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return fmt.Errorf("store is closed")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO videos
		(video_id, title, channel_id, channel_name, upload_date, duration,
		 views, likes, comment_count, tags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, v := range videos {
		tags := ""
		if len(v.Tags) > 0 {
			data, err := json.Marshal(v.Tags)
			if err != nil {
				return fmt.Errorf("failed to encode tags for %s: %w", v.VideoID, err)
			}
			tags = string(data)
		}
		if _, err := stmt.ExecContext(ctx, v.VideoID, v.Title, v.ChannelID, v.ChannelName,
			v.UploadDate, v.Duration, v.Views, v.Likes, v.CommentCount, tags); err != nil {
			return fmt.Errorf("failed to store video %s: %w", v.VideoID, err)
		}
	}

	return tx.Commit()
}

// VideoCount returns the number of stored videos.
func (s *SQLiteVideoStore) VideoCount(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, fmt.Errorf("store is closed")
	}

	var count uint64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM videos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return count, nil
}

// Close closes the store.
// Forces a WAL checkpoint before closing.
func (s *SQLiteVideoStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil // Idempotent
	}

	s.closed = true
	if s.db != nil {
		// Checkpoint before close to ensure durability
		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		return s.db.Close()
	}
	return nil
}
