// Package store persists finished crawl results to SQLite so past audits
// can be listed and reloaded.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sableview/uivet/internal/logging"
	"github.com/sableview/uivet/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when the requested crawl does not exist.
var ErrNotFound = errors.New("crawl not found")

// Store wraps the audit history database. It is safe for concurrent use;
// database/sql serializes access to the single SQLite file.
type Store struct {
	db     *sql.DB
	logger logging.Logger
}

// CrawlSummary is one row of the audit history listing.
type CrawlSummary struct {
	ID           string `json:"id"`
	RootURL      string `json:"root_url"`
	Score        int    `json:"score"`
	PagesScanned int    `json:"pages_scanned"`
	CreatedAt    string `json:"created_at"`
}

func New(path string, logger logging.Logger) (*Store, error) {
	if logger == nil {
		logger = logging.NewStdoutLogger("store")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("store opened", logging.Field{Key: "path", Value: path})
	return &Store{db: db, logger: logger}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveCrawl stores the whole result in one transaction and returns the new
// crawl id.
func (s *Store) SaveCrawl(ctx context.Context, cr model.CrawlResult) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	crawlID := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO crawls (id, root_url, score, pages_scanned, total_pages_found, elapsed_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		crawlID, cr.RootURL, cr.Score, cr.PagesScanned, cr.TotalPagesFound, cr.ElapsedMs,
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("insert crawl: %w", err)
	}

	for _, page := range cr.Pages {
		pageID := uuid.NewString()
		links, err := json.Marshal(page.Links)
		if err != nil {
			return "", fmt.Errorf("marshal links: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO pages (id, crawl_id, url, score, timestamp, load_time_ms, dom_elements, links, screenshot)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			pageID, crawlID, page.URL, page.Score, page.Timestamp,
			page.Metrics.LoadTimeMs, page.Metrics.DOMElements, string(links), page.Screenshot)
		if err != nil {
			return "", fmt.Errorf("insert page %s: %w", page.URL, err)
		}

		for i, f := range page.Findings {
			payload, err := json.Marshal(f)
			if err != nil {
				return "", fmt.Errorf("marshal finding: %w", err)
			}
			// Row keys are store-scoped like page rows: the finding's own ID
			// recurs when the same result is saved twice, and lives in the
			// payload.
			_, err = tx.ExecContext(ctx,
				`INSERT INTO findings (id, page_id, position, code, severity, message, priority, payload)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), pageID, i, f.Code, string(f.Severity), f.Message, f.Priority, string(payload))
			if err != nil {
				return "", fmt.Errorf("insert finding: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("crawl saved",
		logging.Field{Key: "crawl_id", Value: crawlID},
		logging.Field{Key: "pages", Value: len(cr.Pages)})
	return crawlID, nil
}

// ListCrawls returns audit summaries, newest first.
func (s *Store) ListCrawls(ctx context.Context) ([]CrawlSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, root_url, score, pages_scanned, created_at
		 FROM crawls ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list crawls: %w", err)
	}
	defer rows.Close()

	var out []CrawlSummary
	for rows.Next() {
		var c CrawlSummary
		if err := rows.Scan(&c.ID, &c.RootURL, &c.Score, &c.PagesScanned, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan crawl row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCrawl loads one saved crawl with all its pages and findings.
func (s *Store) GetCrawl(ctx context.Context, crawlID string) (model.CrawlResult, error) {
	var cr model.CrawlResult
	err := s.db.QueryRowContext(ctx,
		`SELECT root_url, score, pages_scanned, total_pages_found, elapsed_ms
		 FROM crawls WHERE id = ?`, crawlID).
		Scan(&cr.RootURL, &cr.Score, &cr.PagesScanned, &cr.TotalPagesFound, &cr.ElapsedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CrawlResult{}, fmt.Errorf("%w: %s", ErrNotFound, crawlID)
	}
	if err != nil {
		return model.CrawlResult{}, fmt.Errorf("load crawl: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, score, timestamp, load_time_ms, dom_elements, links, screenshot
		 FROM pages WHERE crawl_id = ? ORDER BY rowid`, crawlID)
	if err != nil {
		return model.CrawlResult{}, fmt.Errorf("load pages: %w", err)
	}
	defer rows.Close()

	var pageIDs []string
	for rows.Next() {
		var (
			pageID string
			page   model.PageResult
			links  string
		)
		if err := rows.Scan(&pageID, &page.URL, &page.Score, &page.Timestamp,
			&page.Metrics.LoadTimeMs, &page.Metrics.DOMElements, &links, &page.Screenshot); err != nil {
			return model.CrawlResult{}, fmt.Errorf("scan page row: %w", err)
		}
		if err := json.Unmarshal([]byte(links), &page.Links); err != nil {
			return model.CrawlResult{}, fmt.Errorf("unmarshal links: %w", err)
		}
		cr.Pages = append(cr.Pages, page)
		pageIDs = append(pageIDs, pageID)
	}
	if err := rows.Err(); err != nil {
		return model.CrawlResult{}, err
	}

	for i, pageID := range pageIDs {
		findings, err := s.loadFindings(ctx, pageID)
		if err != nil {
			return model.CrawlResult{}, err
		}
		cr.Pages[i].Findings = findings
	}
	return cr, nil
}

func (s *Store) loadFindings(ctx context.Context, pageID string) ([]model.Finding, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM findings WHERE page_id = ? ORDER BY position`, pageID)
	if err != nil {
		return nil, fmt.Errorf("load findings: %w", err)
	}
	defer rows.Close()

	var out []model.Finding
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan finding row: %w", err)
		}
		var f model.Finding
		if err := json.Unmarshal([]byte(payload), &f); err != nil {
			return nil, fmt.Errorf("unmarshal finding: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteCrawl removes one crawl and its pages and findings.
func (s *Store) DeleteCrawl(ctx context.Context, crawlID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM crawls WHERE id = ?`, crawlID)
	if err != nil {
		return fmt.Errorf("delete crawl: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, crawlID)
	}
	return nil
}
