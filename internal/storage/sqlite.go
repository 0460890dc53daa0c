// Package storage persists knowledge-base documents and triaged
// incidents in SQLite. Schema changes ship as embedded migrations
// applied in filename order on open.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database holding documents and incidents.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database
// (used by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "kite.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		// Check if already applied.
		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// AppliedMigrations returns the list of applied migration versions in ascending order.
func (s *Store) AppliedMigrations() ([]int, error) {
	rows, err := s.db.Query("SELECT version FROM schema_version ORDER BY version ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// --- Documents ---

// UpsertDocument inserts a document or replaces the existing row with
// the same ID. Tags containing commas are rejected; the delimiter would
// make them read back as separate tags.
func (s *Store) UpsertDocument(d DocumentRecord) error {
	tags, err := joinTags(d.Tags)
	if err != nil {
		return fmt.Errorf("document %s: %w", d.ID, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO documents (id, title, content, category, document_type, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			category = excluded.category,
			document_type = excluded.document_type,
			tags = excluded.tags,
			updated_at = excluded.updated_at`,
		d.ID, d.Title, d.Content, d.Category, d.DocumentType, tags,
		d.CreatedAt.UTC().Format(time.RFC3339), d.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetDocument fetches one document by ID.
func (s *Store) GetDocument(id string) (DocumentRecord, error) {
	row := s.db.QueryRow(`
		SELECT id, title, content, category, document_type, tags, created_at, updated_at
		FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListDocuments returns every stored document ordered by ID.
func (s *Store) ListDocuments() ([]DocumentRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, title, content, category, document_type, tags, created_at, updated_at
		FROM documents ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []DocumentRecord
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document. Deleting a missing ID returns ErrNotFound.
func (s *Store) DeleteDocument(id string) error {
	res, err := s.db.Exec("DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountDocuments returns how many documents are stored.
func (s *Store) CountDocuments() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents").Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (DocumentRecord, error) {
	var d DocumentRecord
	var tags, createdAt, updatedAt string
	err := row.Scan(&d.ID, &d.Title, &d.Content, &d.Category, &d.DocumentType, &tags, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return DocumentRecord{}, ErrNotFound
	}
	if err != nil {
		return DocumentRecord{}, err
	}
	d.Tags = splitTags(tags)
	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return DocumentRecord{}, fmt.Errorf("parsing created_at for %s: %w", d.ID, err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return DocumentRecord{}, fmt.Errorf("parsing updated_at for %s: %w", d.ID, err)
	}
	return d, nil
}

// --- Incidents ---

// SaveIncident records a triage outcome.
func (s *Store) SaveIncident(i IncidentRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO incidents (id, description, category, confidence, severity, priority, assigned_to, estimated_time, resolution_mins, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.Description, i.Category, i.Confidence, i.Severity, i.Priority,
		i.AssignedTo, i.EstimatedTime, i.ResolutionMins, i.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetIncident fetches one incident by ID.
func (s *Store) GetIncident(id string) (IncidentRecord, error) {
	var i IncidentRecord
	var createdAt string
	err := s.db.QueryRow(`
		SELECT id, description, category, confidence, severity, priority, assigned_to, estimated_time, resolution_mins, created_at
		FROM incidents WHERE id = ?`, id,
	).Scan(&i.ID, &i.Description, &i.Category, &i.Confidence, &i.Severity, &i.Priority,
		&i.AssignedTo, &i.EstimatedTime, &i.ResolutionMins, &createdAt)
	if err == sql.ErrNoRows {
		return IncidentRecord{}, ErrNotFound
	}
	if err != nil {
		return IncidentRecord{}, err
	}
	if i.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return IncidentRecord{}, fmt.Errorf("parsing created_at for %s: %w", i.ID, err)
	}
	return i, nil
}

// ListIncidents returns the most recent incidents, newest first.
func (s *Store) ListIncidents(limit int) ([]IncidentRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, description, category, confidence, severity, priority, assigned_to, estimated_time, resolution_mins, created_at
		FROM incidents ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []IncidentRecord
	for rows.Next() {
		var i IncidentRecord
		var createdAt string
		if err := rows.Scan(&i.ID, &i.Description, &i.Category, &i.Confidence, &i.Severity, &i.Priority,
			&i.AssignedTo, &i.EstimatedTime, &i.ResolutionMins, &createdAt); err != nil {
			return nil, err
		}
		if i.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at for %s: %w", i.ID, err)
		}
		incidents = append(incidents, i)
	}
	return incidents, rows.Err()
}

// CountIncidentsByCategory returns incident counts keyed by category.
func (s *Store) CountIncidentsByCategory() (map[string]int, error) {
	rows, err := s.db.Query("SELECT category, COUNT(*) FROM incidents GROUP BY category")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, err
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// Tags are stored as a single comma-joined column.

func joinTags(tags []string) (string, error) {
	for _, t := range tags {
		if strings.Contains(t, ",") {
			return "", fmt.Errorf("tag %q contains a comma", t)
		}
	}
	return strings.Join(tags, ","), nil
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
