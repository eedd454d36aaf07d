// Package sqlite is the embedded-engine backend: a file-backed SQLite
// database bootstrapped from an embedded schema and seed script.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"

	"github.com/agriconnect/platform/internal/core/domain"
	"github.com/agriconnect/platform/internal/core/ports"
)

//go:embed schema.sql
var schemaSQL string

//go:embed seed.sql
var seedSQL string

const defaultPath = "agriconnect.db"

// Config captures the settings for the embedded backend.
type Config struct {
	// Path is the database file location.
	Path string
	// SeedPassword is hashed and assigned to every seeded account.
	SeedPassword string
}

// Backend implements ports.DataBackend over a local SQLite file.
type Backend struct {
	cfg Config

	mu sync.RWMutex // guards db handle swaps on import/reset
	db *sql.DB
}

var _ ports.DataBackend = (*Backend)(nil)

// Open opens (or creates) the database file and bootstraps schema plus seed
// data when the users table does not exist yet.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}
	if cfg.SeedPassword == "" {
		cfg.SeedPassword = "changeme"
	}

	b := &Backend{cfg: cfg}
	db, err := b.open(ctx, true)
	if err != nil {
		return nil, err
	}
	b.db = db
	return b, nil
}

func (b *Backend) open(ctx context.Context, bootstrap bool) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", b.cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if bootstrap {
		if err := b.bootstrap(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func (b *Backend) bootstrap(ctx context.Context, db *sql.DB) error {
	var name string
	err := db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'users'`).Scan(&name)
	if err == nil {
		return nil // already bootstrapped
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: probe users table: %w", err)
	}

	if err := execScript(ctx, db, schemaSQL); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	if err := execScript(ctx, db, seedSQL); err != nil {
		return fmt.Errorf("sqlite: apply seed: %w", err)
	}
	if err := seedUsers(ctx, db, b.cfg.SeedPassword); err != nil {
		return fmt.Errorf("sqlite: seed users: %w", err)
	}
	return nil
}

// seedUsers inserts the default accounts. The hash is computed here because
// bcrypt output is salted and cannot live in a static seed file.
func seedUsers(ctx context.Context, db *sql.DB, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	users := []struct {
		id           int64
		name, email  string
		role         string
		location     string
		organization string
	}{
		{1, "Anita Desai", "admin@agriconnect.local", domain.RoleAdmin, "Mumbai", "AgriConnect"},
		{2, "Ravi Kumar", "ravi@agriconnect.local", domain.RoleFarmer, "Pune", "Kumar Farms"},
		{3, "Meera Patel", "meera@agriconnect.local", domain.RoleExpert, "Ahmedabad", "AgriTech Institute"},
		{4, "Arjun Singh", "arjun@agriconnect.local", domain.RolePublic, "Nashik", ""},
	}
	for _, u := range users {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (id, name, email, password_hash, role, location, organization, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			u.id, u.name, u.email, string(hash), u.role, u.location, u.organization,
			"2024-01-01T00:00:00Z")
		if err != nil {
			return err
		}
	}
	return nil
}

func execScript(ctx context.Context, db *sql.DB, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) handle() *sql.DB {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.db
}

func (b *Backend) Query(ctx context.Context, sqlText string, params []any) ([]ports.Row, error) {
	rows, err := b.handle().QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func (b *Backend) Run(ctx context.Context, sqlText string, params []any) (ports.RunResult, error) {
	res, err := b.handle().ExecContext(ctx, sqlText, params...)
	if err != nil {
		return ports.RunResult{}, err
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		lastID = 0
	}
	changes, err := res.RowsAffected()
	if err != nil {
		changes = 0
	}
	return ports.RunResult{LastInsertID: lastID, Changes: changes}, nil
}

func (b *Backend) Execute(ctx context.Context, sqlText string, params []any) ([]ports.Row, error) {
	rows, err := b.handle().QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

func (b *Backend) RunScript(ctx context.Context, script string) error {
	return execScript(ctx, b.handle(), script)
}

// ExportSnapshot serializes the database via VACUUM INTO a temporary file.
func (b *Backend) ExportSnapshot(ctx context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tmp := filepath.Join(os.TempDir(), fmt.Sprintf("agriconnect-export-%d.db", os.Getpid()))
	_ = os.Remove(tmp) // VACUUM INTO refuses to overwrite
	if _, err := b.db.ExecContext(ctx, `VACUUM INTO ?`, tmp); err != nil {
		return nil, fmt.Errorf("sqlite: export: %w", err)
	}
	defer os.Remove(tmp)
	return os.ReadFile(tmp)
}

// ImportSnapshot replaces the database file wholesale and reopens it.
func (b *Backend) ImportSnapshot(ctx context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.db.Close(); err != nil {
		return err
	}
	b.removeSidecars()
	if err := os.WriteFile(b.cfg.Path, data, 0o644); err != nil {
		return fmt.Errorf("sqlite: import: %w", err)
	}
	db, err := b.open(ctx, false)
	if err != nil {
		return err
	}
	b.db = db
	return nil
}

// ResetToSeed deletes the database file and bootstraps a fresh one.
func (b *Backend) ResetToSeed(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.db.Close(); err != nil {
		return err
	}
	b.removeSidecars()
	if err := os.Remove(b.cfg.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	db, err := b.open(ctx, true)
	if err != nil {
		return err
	}
	b.db = db
	return nil
}

// removeSidecars drops WAL artifacts so a replaced main file is not paired
// with a stale journal.
func (b *Backend) removeSidecars() {
	for _, suffix := range []string{"-wal", "-shm"} {
		_ = os.Remove(b.cfg.Path + suffix)
	}
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.handle().PingContext(ctx)
}

func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.db.Close()
}

// scanRows converts sql.Rows into the map form the gateway serves. []byte
// columns become strings so JSON encoding stays readable.
func scanRows(rows *sql.Rows) ([]ports.Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []ports.Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(ports.Row, len(cols))
		for i, col := range cols {
			if bs, ok := values[i].([]byte); ok {
				row[col] = string(bs)
			} else {
				row[col] = values[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
