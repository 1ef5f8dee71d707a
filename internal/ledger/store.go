package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users delete the ledger to adopt a new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the ledger schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("ledger schema version mismatch")

// Store persists runs and frame outcomes in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin schema tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
		return tx.Commit()
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// BeginRun inserts a new run row and returns it.
func (s *Store) BeginRun(ctx context.Context, repoPath, texPath, outputPath string, commitCount int) (*Run, error) {
	run := &Run{
		ID:          uuid.NewString(),
		RepoPath:    repoPath,
		TexPath:     texPath,
		OutputPath:  outputPath,
		CommitCount: commitCount,
		StartedAt:   time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, repo_path, tex_path, output_path, commit_count, started_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.RepoPath, run.TexPath, run.OutputPath, run.CommitCount,
		run.StartedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun records a run's final frame count and error message.
func (s *Store) FinishRun(ctx context.Context, runID string, framesSaved int, runErr string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET frames_saved = ?, error = ?, finished_at = ? WHERE id = ?`,
		framesSaved, strings.TrimSpace(runErr), time.Now().UTC().Format(time.RFC3339Nano), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// AddFrame inserts a pending frame for a commit attempt.
func (s *Store) AddFrame(ctx context.Context, runID string, seq int, commit string) (*Frame, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO frames (run_id, seq, commit_hash, status, updated_at)
         VALUES (?, ?, ?, ?, ?)`,
		runID, seq, commit, StatusPending, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert frame: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Frame{
		ID:        id,
		RunID:     runID,
		Seq:       seq,
		Commit:    commit,
		Status:    StatusPending,
		UpdatedAt: now,
	}, nil
}

// UpdateFrame persists a frame's current status and artifacts.
func (s *Store) UpdateFrame(ctx context.Context, frame *Frame) error {
	if frame == nil {
		return errors.New("frame required")
	}
	frame.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`UPDATE frames SET status = ?, skip_reason = ?, strip_path = ?, pages = ?, updated_at = ?
         WHERE id = ?`,
		frame.Status, frame.SkipReason, frame.StripPath, frame.Pages,
		frame.UpdatedAt.Format(time.RFC3339Nano), frame.ID,
	)
	if err != nil {
		return fmt.Errorf("update frame: %w", err)
	}
	return nil
}

// Frames returns a run's frames ordered by sequence.
func (s *Store) Frames(ctx context.Context, runID string) ([]Frame, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, run_id, seq, commit_hash, status, skip_reason, strip_path, pages, updated_at
         FROM frames WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var frame Frame
		var status, updatedAt string
		if err := rows.Scan(&frame.ID, &frame.RunID, &frame.Seq, &frame.Commit,
			&status, &frame.SkipReason, &frame.StripPath, &frame.Pages, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		parsed, ok := ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("unknown frame status %q", status)
		}
		frame.Status = parsed
		if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			frame.UpdatedAt = ts
		}
		frames = append(frames, frame)
	}
	return frames, rows.Err()
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit < 1 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, repo_path, tex_path, output_path, commit_count, frames_saved, error, started_at, finished_at
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var startedAt string
		var finishedAt sql.NullString
		if err := rows.Scan(&run.ID, &run.RepoPath, &run.TexPath, &run.OutputPath,
			&run.CommitCount, &run.FramesSaved, &run.Error, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			run.StartedAt = ts
		}
		if finishedAt.Valid {
			if ts, err := time.Parse(time.RFC3339Nano, finishedAt.String); err == nil {
				run.FinishedAt = &ts
			}
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
