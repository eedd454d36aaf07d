package ports

import (
	"context"

	"github.com/agriconnect/platform/internal/core/domain"
)

// UserRepository defines the persistence surface for user accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdateRole(ctx context.Context, id int64, role string) error
}
