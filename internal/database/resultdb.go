package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/contactcrawl/internal/model"
)

// FileName is the name of the database file inside the data directory.
const FileName = "contactcrawl.db"

// ResultDB is the SQLite history of crawl results.
type ResultDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures ResultDB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if missing.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the results database in dbDir.
func Open(dbDir string, opts Options) (*ResultDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &ResultDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Path returns the database file path.
func (rdb *ResultDB) Path() string {
	return rdb.dbPath
}

// Close closes the database connection.
func (rdb *ResultDB) Close() error {
	return rdb.db.Close()
}

func (rdb *ResultDB) createTables() error {
	schema := `
	-- One row per finished crawl; result_json holds the full CrawlResult
	CREATE TABLE IF NOT EXISTS crawl_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		seed TEXT NOT NULL,
		state TEXT NOT NULL,
		pages_attempted INTEGER NOT NULL,
		max_pages INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		result_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_seed ON crawl_runs(seed);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON crawl_runs(started_at);

	-- Every (kind, value, source page) sighting of a run
	CREATE TABLE IF NOT EXISTS contacts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		value TEXT NOT NULL,
		source_url TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_contacts_value ON contacts(value COLLATE NOCASE);
	CREATE INDEX IF NOT EXISTS idx_contacts_run ON contacts(run_id);

	-- Resolved profile details of a run
	CREATE TABLE IF NOT EXISTS profiles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		title TEXT,
		avatar_url TEXT,
		bio TEXT,
		UNIQUE(run_id, url)
	);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveCrawlResult stores a finished result and its contact sightings in one
// transaction and returns the new run ID.
func (rdb *ResultDB) SaveCrawlResult(ctx context.Context, result *model.CrawlResult) (id int64, err error) {
	if result == nil {
		return 0, ErrNilResult
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize result: %w", err)
	}
	summaryJSON, err := json.Marshal(result.Summary())
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_runs (seed, state, pages_attempted, max_pages, started_at, finished_at, summary_json, result_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.Seed,
		result.State.String(),
		result.PagesAttempted,
		result.MaxPages,
		formatTimestamp(result.StartedAt),
		formatTimestamp(result.FinishedAt),
		string(summaryJSON),
		string(resultJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert crawl run: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read run id: %w", err)
	}

	contactStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO contacts (run_id, kind, value, source_url) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare contact insert: %w", err)
	}
	defer contactStmt.Close()

	for _, rec := range result.Records {
		for _, group := range []struct {
			kind   model.ContactKind
			values []string
		}{
			{model.KindEmail, rec.Emails},
			{model.KindPhone, rec.Phones},
			{model.KindProfile, rec.Profiles},
		} {
			for _, v := range group.values {
				if _, err = contactStmt.ExecContext(ctx, id, group.kind.String(), v, rec.SourceURL); err != nil {
					return 0, fmt.Errorf("failed to insert contact: %w", err)
				}
			}
		}
	}

	profileStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO profiles (run_id, url, title, avatar_url, bio) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare profile insert: %w", err)
	}
	defer profileStmt.Close()

	for _, u := range result.SortedProfileURLs() {
		p := result.Profiles[u]
		if _, err = profileStmt.ExecContext(ctx, id, u, p.Title, p.AvatarURL, p.Bio); err != nil {
			return 0, fmt.Errorf("failed to insert profile: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit crawl run: %w", err)
	}
	return id, nil
}

// GetRun retrieves a stored result by its run ID. It returns nil, nil when
// no run has that ID.
func (rdb *ResultDB) GetRun(ctx context.Context, id int64) (*model.CrawlResult, error) {
	var resultJSON string
	err := rdb.db.QueryRowContext(ctx,
		`SELECT result_json FROM crawl_runs WHERE id = ?`, id).Scan(&resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get crawl run: %w", err)
	}

	var result model.CrawlResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse crawl run: %w", err)
	}
	if result.Profiles == nil {
		result.Profiles = make(map[string]model.ProfileDetails)
	}
	return &result, nil
}

// GetLatestRun retrieves the most recent stored result for seed, or nil, nil.
func (rdb *ResultDB) GetLatestRun(ctx context.Context, seed string) (*model.CrawlResult, error) {
	var id int64
	err := rdb.db.QueryRowContext(ctx, `
	SELECT id FROM crawl_runs
	WHERE seed = ?
	ORDER BY started_at DESC, id DESC
	LIMIT 1
	`, seed).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest crawl run: %w", err)
	}
	return rdb.GetRun(ctx, id)
}

// RunMetadata summarizes a stored run without loading the full result.
type RunMetadata struct {
	ID             int64         `json:"id"`
	Seed           string        `json:"seed"`
	State          string        `json:"state"`
	PagesAttempted int           `json:"pages_attempted"`
	MaxPages       int           `json:"max_pages"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     time.Time     `json:"finished_at"`
	Summary        model.Summary `json:"summary"`
}

// ListRuns returns run metadata, newest first. An empty seed lists every run.
func (rdb *ResultDB) ListRuns(ctx context.Context, seed string) ([]RunMetadata, error) {
	query := `
	SELECT id, seed, state, pages_attempted, max_pages, started_at, finished_at, summary_json
	FROM crawl_runs
	WHERE 1=1
	`
	args := make([]any, 0, 1)
	if seed != "" {
		query += " AND seed = ?"
		args = append(args, seed)
	}
	query += " ORDER BY started_at DESC, id DESC"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var started, finished, summaryJSON string

		if err := rows.Scan(
			&meta.ID,
			&meta.Seed,
			&meta.State,
			&meta.PagesAttempted,
			&meta.MaxPages,
			&started,
			&finished,
			&summaryJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}

		meta.StartedAt = parseTimestamp(started)
		meta.FinishedAt = parseTimestamp(finished)
		if err := json.Unmarshal([]byte(summaryJSON), &meta.Summary); err != nil {
			meta.Summary = model.Summary{Pages: meta.PagesAttempted}
		}
		runs = append(runs, meta)
	}

	return runs, rows.Err()
}

// ListSeeds returns every seed with at least one stored run, sorted.
func (rdb *ResultDB) ListSeeds(ctx context.Context) ([]string, error) {
	rows, err := rdb.db.QueryContext(ctx, `SELECT DISTINCT seed FROM crawl_runs ORDER BY seed`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seeds: %w", err)
	}
	defer rows.Close()

	var seeds []string
	for rows.Next() {
		var seed string
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}

	return seeds, rows.Err()
}

// Sighting is one stored occurrence of a contact value.
type Sighting struct {
	RunID     int64             `json:"run_id"`
	Seed      string            `json:"seed"`
	Kind      model.ContactKind `json:"kind"`
	Value     string            `json:"value"`
	SourceURL string            `json:"source_url"`
	StartedAt time.Time         `json:"started_at"`
}

// FindContact returns every stored sighting of value across all runs,
// newest run first. Matching ignores case.
func (rdb *ResultDB) FindContact(ctx context.Context, value string) ([]Sighting, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := rdb.db.QueryContext(ctx, `
	SELECT c.run_id, r.seed, c.kind, c.value, c.source_url, r.started_at
	FROM contacts c
	JOIN crawl_runs r ON r.id = c.run_id
	WHERE c.value = ? COLLATE NOCASE
	ORDER BY r.started_at DESC, c.run_id DESC, c.id
	`, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	defer rows.Close()

	var sightings []Sighting
	for rows.Next() {
		var s Sighting
		var kind, started string
		if err := rows.Scan(&s.RunID, &s.Seed, &kind, &s.Value, &s.SourceURL, &started); err != nil {
			return nil, fmt.Errorf("failed to scan sighting: %w", err)
		}
		s.Kind = model.ContactKind(kind)
		s.StartedAt = parseTimestamp(started)
		sightings = append(sightings, s)
	}

	return sightings, rows.Err()
}

// GetProfiles returns the profiles stored for a run, sorted by URL.
func (rdb *ResultDB) GetProfiles(ctx context.Context, runID int64) ([]model.ProfileDetails, error) {
	rows, err := rdb.db.QueryContext(ctx, `
	SELECT url, COALESCE(title, ''), COALESCE(avatar_url, ''), COALESCE(bio, '')
	FROM profiles
	WHERE run_id = ?
	ORDER BY url
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.ProfileDetails
	for rows.Next() {
		var p model.ProfileDetails
		if err := rows.Scan(&p.URL, &p.Title, &p.AvatarURL, &p.Bio); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// DeleteRun removes a run and its sightings. It reports whether a run existed.
func (rdb *ResultDB) DeleteRun(ctx context.Context, id int64) (deleted bool, err error) {
	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"contacts", "profiles"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", id); err != nil {
			return false, fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM crawl_runs WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete crawl run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n > 0, nil
}

// storedTimeLayout has fixed width so stored timestamps sort as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

// timestampFormats lists the layouts parseTimestamp accepts, most specific first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05", // SQLite CURRENT_TIMESTAMP
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999",
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
