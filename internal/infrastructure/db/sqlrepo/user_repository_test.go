package sqlrepo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agriconnect/platform/internal/core/domain"
	"github.com/agriconnect/platform/internal/core/ports"
)

// fakeExecutor records statements and plays back scripted results.
type fakeExecutor struct {
	rows    []ports.Row
	rowsErr error
	runRes  ports.RunResult
	runErr  error

	lastSQL    string
	lastParams []any
}

func (f *fakeExecutor) Query(_ context.Context, sql string, params []any) ([]ports.Row, error) {
	f.lastSQL, f.lastParams = sql, params
	return f.rows, f.rowsErr
}

func (f *fakeExecutor) Run(_ context.Context, sql string, params []any) (ports.RunResult, error) {
	f.lastSQL, f.lastParams = sql, params
	return f.runRes, f.runErr
}

func TestFindByEmail(t *testing.T) {
	db := &fakeExecutor{rows: []ports.Row{{
		"id": int64(3), "name": "Meera Patel", "email": "meera@agriconnect.local",
		"password_hash": "$2a$10$x", "role": "expert",
		"created_at": "2024-01-01T00:00:00Z",
	}}}
	repo := NewUserRepository(db)

	user, err := repo.FindByEmail(context.Background(), "meera@agriconnect.local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 3 || user.Role != "expert" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.CreatedAt.IsZero() {
		t.Error("created_at should be parsed from the string form")
	}
	if !strings.Contains(db.lastSQL, "WHERE email = ?") {
		t.Errorf("unexpected statement: %s", db.lastSQL)
	}
}

func TestFindByEmailNotFound(t *testing.T) {
	repo := NewUserRepository(&fakeExecutor{})
	if _, err := repo.FindByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestFindByIDToleratesBackendTypeSpread(t *testing.T) {
	// Postgres rows come back with int32 ids and time.Time timestamps.
	db := &fakeExecutor{rows: []ports.Row{{
		"id": int32(4), "name": "Arjun Singh", "email": "arjun@agriconnect.local",
		"password_hash": []byte("$2a$10$x"), "role": "public",
		"created_at": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}}
	repo := NewUserRepository(db)

	user, err := repo.FindByID(context.Background(), 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 4 {
		t.Errorf("int32 id not converted: %d", user.ID)
	}
	if user.PasswordHash != "$2a$10$x" {
		t.Errorf("[]byte column not converted: %q", user.PasswordHash)
	}
	if user.CreatedAt.Year() != 2024 {
		t.Errorf("time.Time column lost: %v", user.CreatedAt)
	}
}

func TestCreateUsesInsertID(t *testing.T) {
	db := &fakeExecutor{runRes: ports.RunResult{LastInsertID: 1007, Changes: 1}}
	repo := NewUserRepository(db)

	created, err := repo.Create(context.Background(), &domain.User{
		Name: "New Farmer", Email: "new@x.com", PasswordHash: "$2a$10$y", Role: "farmer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 1007 {
		t.Errorf("expected backend-assigned id, got %d", created.ID)
	}
	if len(db.lastParams) != 7 {
		t.Errorf("expected 7 bind params, got %d", len(db.lastParams))
	}
}

func TestCreateReadsBackIDWhenBackendOmitsIt(t *testing.T) {
	// Postgres reports insert ids only for RETURNING statements, so Run
	// yields LastInsertID 0 and the created row must be read back.
	db := &fakeExecutor{
		runRes: ports.RunResult{LastInsertID: 0, Changes: 1},
		rows: []ports.Row{{
			"id": int64(11), "name": "New Farmer", "email": "new@x.com",
			"password_hash": "$2a$10$y", "role": "farmer",
			"created_at": "2024-06-01T00:00:00Z",
		}},
	}
	repo := NewUserRepository(db)

	created, err := repo.Create(context.Background(), &domain.User{
		Name: "New Farmer", Email: "new@x.com", PasswordHash: "$2a$10$y", Role: "farmer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != 11 {
		t.Errorf("expected the re-fetched id, got %d", created.ID)
	}
	if !strings.Contains(db.lastSQL, "WHERE email = ?") {
		t.Errorf("expected a read-back by email, last statement: %s", db.lastSQL)
	}
}

func TestUpdateRoleMissingUser(t *testing.T) {
	db := &fakeExecutor{runRes: ports.RunResult{Changes: 0}}
	repo := NewUserRepository(db)

	if err := repo.UpdateRole(context.Background(), 999, "expert"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
