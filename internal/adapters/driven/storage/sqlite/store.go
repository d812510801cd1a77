// Package sqlite provides a SQLite-backed implementation of the
// organisation store, used when a data directory is configured.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/windlass-labs/windlass/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/windlass-labs/windlass/internal/core/domain"
	"github.com/windlass-labs/windlass/internal/core/ports/driven"
)

// Store is a SQLite-based storage that provides access to the
// organisation store through a wrapper type.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.windlass/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".windlass", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "windlass.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// OrganisationStore returns an OrganisationStore backed by this store.
func (s *Store) OrganisationStore() driven.OrganisationStore {
	return &organisationStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// organisationStore implements driven.OrganisationStore.
type organisationStore struct {
	store *Store
}

var _ driven.OrganisationStore = (*organisationStore)(nil)

// Save stores or updates an organisation.
func (s *organisationStore) Save(ctx context.Context, org domain.Organisation) error {
	if org.ID == "" {
		return domain.ErrInvalidInput
	}

	configJSON, err := json.Marshal(org.Config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO organisations (id, region, connector_type, credential, config, last_sync_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			region = excluded.region,
			connector_type = excluded.connector_type,
			credential = excluded.credential,
			config = excluded.config,
			last_sync_at = excluded.last_sync_at
	`, org.ID, org.Region, org.ConnectorType, org.Credential, string(configJSON),
		nullTime(org.LastSyncAt), org.CreatedAt)
	if err != nil {
		return fmt.Errorf("saving organisation: %w", err)
	}
	return nil
}

// Get retrieves an organisation by ID.
func (s *organisationStore) Get(ctx context.Context, id string) (*domain.Organisation, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, region, connector_type, credential, config, last_sync_at, created_at
		FROM organisations WHERE id = ?
	`, id)
	return scanOrganisation(row)
}

// List returns all organisations.
func (s *organisationStore) List(ctx context.Context) ([]domain.Organisation, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, region, connector_type, credential, config, last_sync_at, created_at
		FROM organisations ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("listing organisations: %w", err)
	}
	defer rows.Close()

	var orgs []domain.Organisation
	for rows.Next() {
		org, err := scanOrganisation(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, *org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating organisations: %w", err)
	}
	return orgs, nil
}

// Remove deletes an organisation.
func (s *organisationStore) Remove(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM organisations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("removing organisation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetLastSync records the start instant of the last completed sync.
func (s *organisationStore) SetLastSync(ctx context.Context, id string, startedAt time.Time) error {
	result, err := s.store.db.ExecContext(ctx,
		"UPDATE organisations SET last_sync_at = ? WHERE id = ?",
		startedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating last sync: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrganisation(row scanner) (*domain.Organisation, error) {
	var org domain.Organisation
	var configJSON string
	var lastSync sql.NullTime

	err := row.Scan(&org.ID, &org.Region, &org.ConnectorType, &org.Credential,
		&configJSON, &lastSync, &org.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning organisation: %w", err)
	}

	if err := json.Unmarshal([]byte(configJSON), &org.Config); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if lastSync.Valid {
		org.LastSyncAt = lastSync.Time
	}
	return &org, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}
