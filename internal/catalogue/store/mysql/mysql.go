// Package mysql is a catalogue.Store backed by MySQL, storing hashes as
// fixed-length hex text per spec §6 and relying on a secondary index on
// postings.hash for lookup speed.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/soundmark/soundmark/internal/catalogue"
	"github.com/soundmark/soundmark/internal/landmark"
)

const schema = `
CREATE TABLE IF NOT EXISTS works (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(512) NOT NULL,
	kind VARCHAR(16) NOT NULL,
	season INT NULL,
	episode_number INT NULL,
	source_path VARCHAR(1024) NOT NULL,
	posting_count BIGINT NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_source_path (source_path)
) ENGINE=InnoDB;

CREATE TABLE IF NOT EXISTS postings (
	hash CHAR(40) NOT NULL,
	anchor_time INT NOT NULL,
	work_id BIGINT NOT NULL,
	KEY idx_hash (hash)
) ENGINE=InnoDB;
`

// Store is a MySQL-backed catalogue.Store.
type Store struct {
	db *sql.DB
}

// Open connects to dsn and ensures the works/postings schema exists. The
// connection is created lazily by the caller's choice of when to call
// Open, not bound to a package-level singleton.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mysql connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to mysql: %w", err)
	}

	for _, stmt := range strings.Split(schema, ";\n\n") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) FindWorkBySourcePath(ctx context.Context, sourcePath string) (*catalogue.Work, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, kind, season, episode_number, source_path, posting_count, created_at
		FROM works WHERE source_path = ?`, sourcePath)
	w, err := scanWork(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return w, err
}

func (s *Store) GetWork(ctx context.Context, workID int64) (*catalogue.Work, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, kind, season, episode_number, source_path, posting_count, created_at
		FROM works WHERE id = ?`, workID)
	w, err := scanWork(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("work %d not found", workID)
	}
	return w, err
}

func (s *Store) InsertWork(ctx context.Context, meta catalogue.WorkMeta) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO works (title, kind, season, episode_number, source_path, posting_count)
		VALUES (?, ?, ?, ?, ?, 0)`,
		meta.Title, string(meta.Kind), meta.Season, meta.Episode, meta.SourcePath)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) InsertPostings(ctx context.Context, workID int64, postings []landmark.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO postings (hash, anchor_time, work_id) VALUES ")
	args := make([]any, 0, len(postings)*3)
	for i, p := range postings {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, p.Hash, p.AnchorTime, workID)
	}

	_, err := s.db.ExecContext(ctx, sb.String(), args...)
	return err
}

func (s *Store) SetPostingCount(ctx context.Context, workID int64, count int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE works SET posting_count = ? WHERE id = ?`, count, workID)
	return err
}

func (s *Store) LookupHashes(ctx context.Context, hashes []string) (map[string][]catalogue.PostingRecord, error) {
	out := make(map[string][]catalogue.PostingRecord)
	if len(hashes) == 0 {
		return out, nil
	}

	const maxPlaceholders = 1000
	for i := 0; i < len(hashes); i += maxPlaceholders {
		end := i + maxPlaceholders
		if end > len(hashes) {
			end = len(hashes)
		}
		batch := hashes[i:end]

		placeholders := strings.Repeat("?,", len(batch))
		placeholders = placeholders[:len(placeholders)-1]

		args := make([]any, len(batch))
		for j, h := range batch {
			args[j] = h
		}

		rows, err := s.db.QueryContext(ctx, fmt.Sprintf(
			"SELECT hash, work_id, anchor_time FROM postings WHERE hash IN (%s)", placeholders), args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var hash string
			var rec catalogue.PostingRecord
			if err := rows.Scan(&hash, &rec.WorkID, &rec.AnchorTime); err != nil {
				rows.Close()
				return nil, err
			}
			out[hash] = append(out[hash], rec)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return out, nil
}

func (s *Store) Statistics(ctx context.Context) (catalogue.Stats, error) {
	var stats catalogue.Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(posting_count), 0) FROM works`)
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM postings WHERE work_id = ?`, workID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM works WHERE id = ?`, workID); err != nil {
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
