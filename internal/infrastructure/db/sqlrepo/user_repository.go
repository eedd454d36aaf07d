// Package sqlrepo implements the repository ports with plain SQL issued
// through the datastore facade, so the same code serves every backend.
package sqlrepo

import (
	"context"
	"time"

	"github.com/agriconnect/platform/internal/core/domain"
	"github.com/agriconnect/platform/internal/core/ports"
)

const userColumns = `id, name, email, password_hash, role, location, organization, avatar, created_at`

// UserRepository persists user accounts through a StatementExecutor.
type UserRepository struct {
	db ports.StatementExecutor
}

func NewUserRepository(db ports.StatementExecutor) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, []any{email})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return rowToUser(rows[0]), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, []any{id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return rowToUser(rows[0]), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	res, err := r.db.Run(ctx,
		`INSERT INTO users (name, email, password_hash, role, location, organization, avatar)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		[]any{user.Name, user.Email, user.PasswordHash, user.Role,
			user.Location, user.Organization, user.Avatar})
	if err != nil {
		return nil, err
	}

	// The postgres backend reports insert ids only for RETURNING statements,
	// so a zero id means we have to read the row back. Email is unique.
	if res.LastInsertID == 0 {
		return r.FindByEmail(ctx, user.Email)
	}

	created := *user
	created.ID = res.LastInsertID
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	return &created, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role string) error {
	res, err := r.db.Run(ctx,
		`UPDATE users SET role = ? WHERE id = ?`, []any{role, id})
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// rowToUser converts a facade row into a User, tolerating the type spread
// across backends (int64/float64 ids, string/time.Time timestamps).
func rowToUser(row ports.Row) *domain.User {
	return &domain.User{
		ID:           colInt64(row, "id"),
		Name:         colString(row, "name"),
		Email:        colString(row, "email"),
		PasswordHash: colString(row, "password_hash"),
		Role:         colString(row, "role"),
		Location:     colString(row, "location"),
		Organization: colString(row, "organization"),
		Avatar:       colString(row, "avatar"),
		CreatedAt:    colTime(row, "created_at"),
	}
}

func colString(row ports.Row, col string) string {
	switch v := row[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func colInt64(row ports.Row, col string) int64 {
	switch v := row[col].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func colTime(row ports.Row, col string) time.Time {
	switch v := row[col].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
		if t, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			return t
		}
	}
	return time.Time{}
}
