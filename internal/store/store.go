// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists papers and cached insight reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/mattn/go-sqlite3"

	"github.com/DingyangLyu/AutoMatResearch/pkg/types"
)

const timeLayout = time.RFC3339

// Store manages the paper database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database at cfg.Path, creating the
// schema and parent directories as needed.
func Open(cfg types.StoreConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			arxiv_id TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			authors TEXT,
			abstract TEXT,
			published_date TEXT,
			categories TEXT,
			pdf_url TEXT,
			summary TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_published ON papers(published_date)`,
		`CREATE TABLE IF NOT EXISTS insights (
			key TEXT PRIMARY KEY,
			content_hash TEXT NOT NULL,
			text TEXT NOT NULL,
			trending_topics TEXT,
			generated_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SavePaper inserts a paper. It reports false with a nil error when a
// paper with the same arXiv identifier already exists; the stored row
// is left untouched.
func (s *Store) SavePaper(ctx context.Context, p types.Paper) (bool, error) {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO papers
			(arxiv_id, title, authors, abstract, published_date, categories, pdf_url, summary, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ArxivID,
		p.Title,
		joinList(p.Authors),
		p.Abstract,
		p.PublishedDate.UTC().Format(timeLayout),
		joinList(p.Categories),
		p.PDFURL,
		p.Summary,
		createdAt.Format(timeLayout),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return false, nil
		}
		return false, fmt.Errorf("inserting paper %s: %w", p.ArxivID, err)
	}
	return true, nil
}

// PaperExists reports whether a paper with the given arXiv identifier
// is stored.
func (s *Store) PaperExists(ctx context.Context, arxivID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM papers WHERE arxiv_id = ?`, arxivID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking paper %s: %w", arxivID, err)
	}
	return n > 0, nil
}

// GetPaper returns the paper with the given arXiv identifier, or
// sql.ErrNoRows when none is stored.
func (s *Store) GetPaper(ctx context.Context, arxivID string) (types.Paper, error) {
	query, args, err := paperSelect().Where(sq.Eq{"arxiv_id": arxivID}).ToSql()
	if err != nil {
		return types.Paper{}, fmt.Errorf("building query: %w", err)
	}
	row := s.db.QueryRowContext(ctx, query, args...)
	p, err := scanPaper(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Paper{}, err
		}
		return types.Paper{}, fmt.Errorf("loading paper %s: %w", arxivID, err)
	}
	return p, nil
}

// RecentPapers returns up to limit papers ordered by publication date,
// newest first.
func (s *Store) RecentPapers(ctx context.Context, limit int) ([]types.Paper, error) {
	b := paperSelect().OrderBy("published_date DESC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return s.queryPapers(ctx, b)
}

// PapersSince returns papers published at or after the given time,
// newest first.
func (s *Store) PapersSince(ctx context.Context, since time.Time) ([]types.Paper, error) {
	b := paperSelect().
		Where(sq.GtOrEq{"published_date": since.UTC().Format(timeLayout)}).
		OrderBy("published_date DESC")
	return s.queryPapers(ctx, b)
}

// SearchPapers returns papers whose title, abstract, summary, or
// author list contains the query string, newest first.
func (s *Store) SearchPapers(ctx context.Context, query string) ([]types.Paper, error) {
	pattern := "%" + query + "%"
	b := paperSelect().
		Where(sq.Or{
			sq.Like{"title": pattern},
			sq.Like{"abstract": pattern},
			sq.Like{"summary": pattern},
			sq.Like{"authors": pattern},
		}).
		OrderBy("published_date DESC")
	return s.queryPapers(ctx, b)
}

// UpdateSummary stores the generated summary for a paper.
func (s *Store) UpdateSummary(ctx context.Context, arxivID, summary string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE papers SET summary = ? WHERE arxiv_id = ?`, summary, arxivID)
	if err != nil {
		return fmt.Errorf("updating summary for %s: %w", arxivID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating summary for %s: %w", arxivID, err)
	}
	if n == 0 {
		return fmt.Errorf("paper %s not found", arxivID)
	}
	return nil
}

// CountPapers returns the total number of stored papers.
func (s *Store) CountPapers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// CountSavedSince returns the number of papers stored at or after the
// given time, by insertion time rather than publication date.
func (s *Store) CountSavedSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM papers WHERE created_at >= ?`,
		since.UTC().Format(timeLayout),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting recent papers: %w", err)
	}
	return n, nil
}

// LatestPublishedDate returns the publication date of the most recent
// stored paper. ok is false when the store is empty.
func (s *Store) LatestPublishedDate(ctx context.Context) (time.Time, bool, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT max(published_date) FROM papers`,
	).Scan(&raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("finding latest paper: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(timeLayout, raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing latest paper date: %w", err)
	}
	return t, true, nil
}

// GetInsight returns the cached insight for key, or sql.ErrNoRows.
func (s *Store) GetInsight(ctx context.Context, key string) (types.Insight, error) {
	var (
		in        types.Insight
		topicsRaw string
		genRaw    string
		updRaw    string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT key, content_hash, text, trending_topics, generated_at, updated_at
		 FROM insights WHERE key = ?`, key,
	).Scan(&in.Key, &in.ContentHash, &in.Text, &topicsRaw, &genRaw, &updRaw)
	if err != nil {
		if err == sql.ErrNoRows {
			return types.Insight{}, err
		}
		return types.Insight{}, fmt.Errorf("loading insight %s: %w", key, err)
	}
	in.TrendingTopics = splitList(topicsRaw)
	if in.GeneratedAt, err = time.Parse(timeLayout, genRaw); err != nil {
		return types.Insight{}, fmt.Errorf("parsing insight %s: %w", key, err)
	}
	if in.UpdatedAt, err = time.Parse(timeLayout, updRaw); err != nil {
		return types.Insight{}, fmt.Errorf("parsing insight %s: %w", key, err)
	}
	return in, nil
}

// PutInsight inserts or replaces the cached insight for in.Key.
func (s *Store) PutInsight(ctx context.Context, in types.Insight) error {
	now := time.Now().UTC()
	generatedAt := in.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = now
	}
	updatedAt := in.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO insights (key, content_hash, text, trending_topics, generated_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
			content_hash = excluded.content_hash,
			text = excluded.text,
			trending_topics = excluded.trending_topics,
			generated_at = excluded.generated_at,
			updated_at = excluded.updated_at`,
		in.Key,
		in.ContentHash,
		in.Text,
		joinList(in.TrendingTopics),
		generatedAt.Format(timeLayout),
		updatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("storing insight %s: %w", in.Key, err)
	}
	return nil
}

func paperSelect() sq.SelectBuilder {
	return sq.Select(
		"arxiv_id", "title", "authors", "abstract",
		"published_date", "categories", "pdf_url", "summary", "created_at",
	).From("papers")
}

func (s *Store) queryPapers(ctx context.Context, b sq.SelectBuilder) ([]types.Paper, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		papers = append(papers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating papers: %w", err)
	}
	return papers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPaper(row rowScanner) (types.Paper, error) {
	var (
		p             types.Paper
		authorsRaw    string
		categoriesRaw string
		publishedRaw  string
		createdRaw    string
		summary       sql.NullString
	)
	err := row.Scan(
		&p.ArxivID, &p.Title, &authorsRaw, &p.Abstract,
		&publishedRaw, &categoriesRaw, &p.PDFURL, &summary, &createdRaw,
	)
	if err != nil {
		return types.Paper{}, err
	}
	p.Authors = splitList(authorsRaw)
	p.Categories = splitList(categoriesRaw)
	p.Summary = summary.String
	if p.PublishedDate, err = time.Parse(timeLayout, publishedRaw); err != nil {
		return types.Paper{}, fmt.Errorf("parsing published date: %w", err)
	}
	if p.CreatedAt, err = time.Parse(timeLayout, createdRaw); err != nil {
		return types.Paper{}, fmt.Errorf("parsing created date: %w", err)
	}
	return p, nil
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
