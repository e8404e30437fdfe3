package identity

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	_ "modernc.org/sqlite"

	"huella/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; existing databases must be recreated after a bump.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages identity and clocking persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the identity database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.DatabasePath()
	db, err := sql.Open("sqlite", dbPath)
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

	store := &Store{db: db, path: dbPath}
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
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to recreate)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}

	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
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

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// CheckHealth verifies the database is reachable and carries the expected
// schema version.
func (s *Store) CheckHealth(ctx context.Context) error {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

// Upsert inserts a new identity or, when the external key already exists,
// replaces its name fields, secondary code, and template in place. The single
// statement keeps the write atomic for concurrent readers.
func (s *Store) Upsert(ctx context.Context, ident Identity) error {
	if strings.TrimSpace(ident.ExternalKey) == "" {
		return errors.New("external key is required")
	}
	if ident.Template == "" {
		return errors.New("template is required")
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO identities (given_name, family_name, external_key, secondary_code, template, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (external_key) DO UPDATE SET
             given_name = excluded.given_name,
             family_name = excluded.family_name,
             secondary_code = excluded.secondary_code,
             template = excluded.template,
             updated_at = excluded.updated_at`,
		ident.GivenName,
		ident.FamilyName,
		ident.ExternalKey,
		nullableString(ident.SecondaryCode),
		ident.Template,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("upsert identity: %w", err)
	}
	return nil
}

// AllTemplates returns a snapshot of every enrolled template keyed by
// external key. An empty map is the normal unenrolled state, not an error.
func (s *Store) AllTemplates(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT external_key, template FROM identities`)
	if err != nil {
		return nil, fmt.Errorf("query templates: %w", err)
	}
	defer rows.Close()

	templates := make(map[string]string)
	for rows.Next() {
		var key, tmpl string
		if err := rows.Scan(&key, &tmpl); err != nil {
			return nil, fmt.Errorf("scan template row: %w", err)
		}
		templates[key] = tmpl
	}
	return templates, rows.Err()
}

// FindByExternalKey fetches one identity, or nil when the key is not enrolled.
func (s *Store) FindByExternalKey(ctx context.Context, externalKey string) (*Identity, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+identityColumns+` FROM identities WHERE external_key = ?`,
		externalKey,
	)
	ident, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return ident, nil
}

// AppendClocking resolves the external key and appends one attendance record
// with the server-assigned timestamp. It returns false without writing when
// the key is no longer enrolled; the caller treats that as a race, not a
// fault. Resolve and insert run inside one transaction.
func (s *Store) AppendClocking(ctx context.Context, externalKey string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin clocking tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var identityID int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM identities WHERE external_key = ?`, externalKey).Scan(&identityID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("resolve identity: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO clockings (identity_id) VALUES (?)`, identityID); err != nil {
		return false, fmt.Errorf("insert clocking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit clocking: %w", err)
	}
	return true, nil
}

// ListIdentities returns every enrolled identity ordered by family name, then
// given name, using Spanish collation so accented names sort naturally.
func (s *Store) ListIdentities(ctx context.Context) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+identityColumns+` FROM identities`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, *ident)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	collator := collate.New(language.Spanish, collate.IgnoreCase)
	sort.SliceStable(identities, func(i, j int) bool {
		if cmp := collator.CompareString(identities[i].FamilyName, identities[j].FamilyName); cmp != 0 {
			return cmp < 0
		}
		return collator.CompareString(identities[i].GivenName, identities[j].GivenName) < 0
	})
	return identities, nil
}

// RecentClockings returns the newest attendance records joined with identity
// data, newest first.
func (s *Store) RecentClockings(ctx context.Context, limit int) ([]Clocking, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT c.id, c.identity_id, i.external_key, i.given_name, i.family_name, c.recorded_at
         FROM clockings c
         JOIN identities i ON i.id = c.identity_id
         ORDER BY c.id DESC
         LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query clockings: %w", err)
	}
	defer rows.Close()

	var clockings []Clocking
	for rows.Next() {
		var (
			entry       Clocking
			givenName   string
			familyName  string
			recordedRaw string
		)
		if err := rows.Scan(&entry.ID, &entry.IdentityID, &entry.ExternalKey, &givenName, &familyName, &recordedRaw); err != nil {
			return nil, fmt.Errorf("scan clocking: %w", err)
		}
		entry.DisplayName = Identity{GivenName: givenName, FamilyName: familyName}.DisplayName()
		if recorded, err := parseTimeString(recordedRaw); err == nil {
			entry.RecordedAt = recorded
		}
		clockings = append(clockings, entry)
	}
	return clockings, rows.Err()
}

// CountClockings returns the total number of attendance records.
func (s *Store) CountClockings(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM clockings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count clockings: %w", err)
	}
	return count, nil
}

const identityColumns = "id, given_name, family_name, external_key, secondary_code, template, created_at, updated_at"

func scanIdentity(scanner interface{ Scan(dest ...any) error }) (*Identity, error) {
	var (
		id            int64
		givenName     string
		familyName    string
		externalKey   string
		secondaryCode sql.NullString
		tmpl          string
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&givenName,
		&familyName,
		&externalKey,
		&secondaryCode,
		&tmpl,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	ident := &Identity{
		ID:            id,
		GivenName:     givenName,
		FamilyName:    familyName,
		ExternalKey:   externalKey,
		SecondaryCode: secondaryCode.String,
		Template:      tmpl,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		ident.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		ident.UpdatedAt = updated
	}
	return ident, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
