// Package postgres is a catalogue.Store backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/soundmark/soundmark/internal/catalogue"
	"github.com/soundmark/soundmark/internal/landmark"
)

const schema = `
CREATE TABLE IF NOT EXISTS works (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	kind TEXT NOT NULL,
	season INT,
	episode_number INT,
	source_path TEXT NOT NULL UNIQUE,
	posting_count BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS postings (
	hash CHAR(40) NOT NULL,
	anchor_time INT NOT NULL,
	work_id BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_postings_hash ON postings (hash);
`

// Store is a PostgreSQL-backed catalogue.Store.
type Store struct {
	db *sql.DB
}

// Open connects to dsn and ensures the works/postings schema exists.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) FindWorkBySourcePath(ctx context.Context, sourcePath string) (*catalogue.Work, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, kind, season, episode_number, source_path, posting_count, created_at
		FROM works WHERE source_path = $1`, sourcePath)
	w, err := scanWork(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return w, err
}

func (s *Store) GetWork(ctx context.Context, workID int64) (*catalogue.Work, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, kind, season, episode_number, source_path, posting_count, created_at
		FROM works WHERE id = $1`, workID)
	w, err := scanWork(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("work %d not found", workID)
	}
	return w, err
}

func (s *Store) InsertWork(ctx context.Context, meta catalogue.WorkMeta) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO works (title, kind, season, episode_number, source_path, posting_count)
		VALUES ($1, $2, $3, $4, $5, 0)
		RETURNING id`,
		meta.Title, string(meta.Kind), meta.Season, meta.Episode, meta.SourcePath).Scan(&id)
	return id, err
}

func (s *Store) InsertPostings(ctx context.Context, workID int64, postings []landmark.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var sb strings.Builder
	sb.WriteString("INSERT INTO postings (hash, anchor_time, work_id) VALUES ")
	args := make([]any, 0, len(postings)*3)
	for i, p := range postings {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * 3
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", n+1, n+2, n+3)
		args = append(args, p.Hash, p.AnchorTime, workID)
	}

	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) SetPostingCount(ctx context.Context, workID int64, count int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE works SET posting_count = $1 WHERE id = $2`, count, workID)
	return err
}

func (s *Store) LookupHashes(ctx context.Context, hashes []string) (map[string][]catalogue.PostingRecord, error) {
	out := make(map[string][]catalogue.PostingRecord)
	if len(hashes) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT hash, work_id, anchor_time FROM postings WHERE hash = ANY($1)`, pq.Array(hashes))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var hash string
		var rec catalogue.PostingRecord
		if err := rows.Scan(&hash, &rec.WorkID, &rec.AnchorTime); err != nil {
			return nil, err
		}
		out[hash] = append(out[hash], rec)
	}
	return out, rows.Err()
}

func (s *Store) Statistics(ctx context.Context) (catalogue.Stats, error) {
	var stats catalogue.Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(posting_count), 0) FROM works`)
	if err := row.Scan(&stats.TotalWorks, &stats.TotalPostings); err != nil {
		return stats, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM works GROUP BY kind`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int64
		if err := rows.Scan(&kind, &count); err != nil {
			return stats, err
		}
		switch catalogue.CanonicalKind(kind) {
		case catalogue.KindMovie:
			stats.Movies += count
		case catalogue.KindEpisode:
			stats.Episodes += count
		}
	}
	return stats, rows.Err()
}

func (s *Store) DeleteWork(ctx context.Context, workID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE work_id = $1`, workID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM works WHERE id = $1`, workID); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWork(row scanner) (*catalogue.Work, error) {
	var w catalogue.Work
	var kind string
	var createdAt time.Time
	err := row.Scan(&w.WorkID, &w.Title, &kind, &w.Season, &w.Episode, &w.SourcePath, &w.PostingCount, &createdAt)
	if err != nil {
		return nil, err
	}
	w.Kind = catalogue.CanonicalKind(kind)
	w.CreatedAt = createdAt
	return &w, nil
}
