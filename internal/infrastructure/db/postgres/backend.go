// Package postgres is the server-side relational backend, the role the
// original deployment gave to a pg connection pool behind the /api proxy.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/agriconnect/platform/internal/core/domain"
	"github.com/agriconnect/platform/internal/core/ports"
)

//go:embed schema.sql
var schemaSQL string

//go:embed seed.sql
var seedSQL string

const defaultTimeout = 10 * time.Second

// Config captures the settings for the PostgreSQL backend.
type Config struct {
	// URL is a pgx connection string.
	URL string
	// SeedPassword is hashed and assigned to every seeded account.
	SeedPassword string
	Timeout      time.Duration
}

// Backend implements ports.DataBackend over a pgx pool.
type Backend struct {
	pool *pgxpool.Pool
	cfg  Config
}

var _ ports.DataBackend = (*Backend)(nil)

// Open connects the pool, verifies connectivity and bootstraps schema plus
// seed data when the users table does not exist yet.
func Open(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.SeedPassword == "" {
		cfg.SeedPassword = "changeme"
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	b := &Backend{pool: pool, cfg: cfg}
	if err := b.bootstrap(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backend) bootstrap(ctx context.Context) error {
	var exists bool
	err := b.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_name = 'users')`).
		Scan(&exists)
	if err != nil {
		return fmt.Errorf("postgres: probe users table: %w", err)
	}
	if exists {
		return nil
	}

	if err := b.execScript(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: apply schema: %w", err)
	}
	if err := b.execScript(ctx, seedSQL); err != nil {
		return fmt.Errorf("postgres: apply seed: %w", err)
	}
	if err := b.seedUsers(ctx); err != nil {
		return fmt.Errorf("postgres: seed users: %w", err)
	}
	return nil
}

func (b *Backend) seedUsers(ctx context.Context) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(b.cfg.SeedPassword), bcrypt.DefaultCost)
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
		_, err := b.pool.Exec(ctx,
			`INSERT INTO users (id, name, email, password_hash, role, location, organization)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			u.id, u.name, u.email, string(hash), u.role, u.location, u.organization)
		if err != nil {
			return err
		}
	}
	_, err = b.pool.Exec(ctx, `SELECT setval('users_id_seq', 10)`)
	return err
}

func (b *Backend) execScript(ctx context.Context, script string) error {
	for _, stmt := range strings.Split(script, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := b.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backend) Query(ctx context.Context, sqlText string, params []any) ([]ports.Row, error) {
	rows, err := b.pool.Query(ctx, Rebind(sqlText), params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ports.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(ports.Row, len(values))
		for i, fd := range rows.FieldDescriptions() {
			row[fd.Name] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Run mirrors the original proxy: changes come from the command tag, and
// lastInsertId from the id column of a returned row when the statement has a
// RETURNING clause.
func (b *Backend) Run(ctx context.Context, sqlText string, params []any) (ports.RunResult, error) {
	rows, err := b.pool.Query(ctx, Rebind(sqlText), params...)
	if err != nil {
		return ports.RunResult{}, err
	}

	var lastID int64
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			rows.Close()
			return ports.RunResult{}, err
		}
		for i, fd := range rows.FieldDescriptions() {
			if fd.Name == "id" {
				lastID = asInt64(values[i])
			}
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ports.RunResult{}, err
	}

	return ports.RunResult{
		LastInsertID: lastID,
		Changes:      rows.CommandTag().RowsAffected(),
	}, nil
}

func (b *Backend) Execute(ctx context.Context, sqlText string, params []any) ([]ports.Row, error) {
	return b.Query(ctx, sqlText, params)
}

func (b *Backend) RunScript(ctx context.Context, script string) error {
	return b.execScript(ctx, script)
}

// ExportSnapshot is only meaningful for the embedded engine; a shared server
// database has no single serialized blob to hand out.
func (b *Backend) ExportSnapshot(context.Context) ([]byte, error) {
	return nil, ports.ErrSnapshotUnsupported
}

func (b *Backend) ImportSnapshot(context.Context, []byte) error {
	return ports.ErrSnapshotUnsupported
}

// ResetToSeed drops every platform table and bootstraps from scratch.
func (b *Backend) ResetToSeed(ctx context.Context) error {
	tables := []string{
		"users", "sectors", "events", "forums", "forum_posts",
		"resources", "sector_connections", "notifications",
	}
	for _, table := range tables {
		if _, err := b.pool.Exec(ctx, `DROP TABLE IF EXISTS `+table+` CASCADE`); err != nil {
			return fmt.Errorf("postgres: drop %s: %w", table, err)
		}
	}
	return b.bootstrap(ctx)
}

func (b *Backend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

func (b *Backend) Close() error {
	b.pool.Close()
	return nil
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
