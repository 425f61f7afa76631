package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/matchcore/internal/domain/model"
	"github.com/okian/matchcore/pkg/metrics"
)

const jobTable = "job_records"

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS job_records (
		job_id       TEXT PRIMARY KEY,
		request_id   TEXT NOT NULL,
		direction    TEXT NOT NULL,
		subject_id   TEXT NOT NULL,
		status       TEXT NOT NULL,
		batch_json   TEXT,
		error        TEXT NOT NULL DEFAULT '',
		submitted_at INTEGER NOT NULL,
		updated_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_job_records_subject ON job_records (subject_id, updated_at DESC)`,
}

var jobColumns = []string{
	"job_id", "request_id", "direction", "subject_id", "status",
	"batch_json", "error", "submitted_at", "updated_at",
}

// SQLiteStore persists job records in a sqlite database.
type SQLiteStore struct {
	db  *sql.DB
	cfg settings
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	cfg := defaultSettings()
	for _, opt := range opts {
		opt(&cfg)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)", path, cfg.busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}

	s := &SQLiteStore{db: db, cfg: cfg}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for i := version; i < len(migrations); i++ {
		if _, err := s.db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bind parameters.
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			return fmt.Errorf("record migration %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, rec model.JobRecord) error { //nolint:gocritic // hugeParam
	defer observe("save", time.Now())
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = s.cfg.now()
	}

	var batchJSON sql.NullString
	if rec.Batch != nil {
		b, err := json.Marshal(rec.Batch)
		if err != nil {
			return fmt.Errorf("encode batch for job %s: %w", rec.JobID, err)
		}
		batchJSON = sql.NullString{String: string(b), Valid: true}
	}

	query, args, err := sq.Insert(jobTable).
		Columns(jobColumns...).
		Values(rec.JobID, rec.RequestID, string(rec.Direction), rec.SubjectID, string(rec.Status),
			batchJSON, rec.Error, rec.SubmittedAt.UnixNano(), rec.UpdatedAt.UnixNano()).
		Suffix(`ON CONFLICT(job_id) DO UPDATE SET
			status = excluded.status,
			batch_json = excluded.batch_json,
			error = excluded.error,
			updated_at = excluded.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build save query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		metrics.RecordErrorByComponent("store", "save")
		return fmt.Errorf("save job %s: %w", rec.JobID, err)
	}
	if n, err := s.Count(ctx); err == nil {
		metrics.UpdateStoreRecords(n)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, jobID string) (model.JobRecord, error) {
	defer observe("get", time.Now())

	query, args, err := sq.Select(jobColumns...).From(jobTable).Where(sq.Eq{"job_id": jobID}).ToSql()
	if err != nil {
		return model.JobRecord{}, fmt.Errorf("build get query: %w", err)
	}
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.JobRecord{}, ErrNotFound
	}
	if err != nil {
		return model.JobRecord{}, fmt.Errorf("get job %s: %w", jobID, err)
	}
	return rec, nil
}

func (s *SQLiteStore) ListBySubject(ctx context.Context, subjectID string, limit int) ([]model.JobRecord, error) {
	defer observe("list", time.Now())
	if err := checkLimit(limit); err != nil {
		return nil, err
	}

	query, args, err := sq.Select(jobColumns...).
		From(jobTable).
		Where(sq.Eq{"subject_id": subjectID}).
		OrderBy("updated_at DESC", "job_id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs for %s: %w", subjectID, err)
	}
	defer rows.Close()

	out := make([]model.JobRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(jobTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (model.JobRecord, error) {
	var (
		rec                  model.JobRecord
		direction, status    string
		batchJSON            sql.NullString
		submittedAt, updated int64
	)
	if err := row.Scan(&rec.JobID, &rec.RequestID, &direction, &rec.SubjectID, &status,
		&batchJSON, &rec.Error, &submittedAt, &updated); err != nil {
		return model.JobRecord{}, err
	}
	rec.Direction = model.Direction(direction)
	rec.Status = model.JobStatus(status)
	rec.SubmittedAt = time.Unix(0, submittedAt).UTC()
	rec.UpdatedAt = time.Unix(0, updated).UTC()
	if batchJSON.Valid {
		var b model.MatchBatch
		if err := json.Unmarshal([]byte(batchJSON.String), &b); err != nil {
			return model.JobRecord{}, fmt.Errorf("decode batch for job %s: %w", rec.JobID, err)
		}
		rec.Batch = &b
	}
	return rec, nil
}
