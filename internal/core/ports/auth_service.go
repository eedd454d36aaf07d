package ports

import (
	"context"

	"github.com/agriconnect/platform/internal/core/domain"
)

// RegisterInput carries the fields of a registration form.
type RegisterInput struct {
	Name         string
	Email        string
	Password     string
	Role         string
	Location     string
	Organization string
}

// AuthService implements registration, login and the self-service role switch.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login returns a signed token and the user profile, or
	// domain.ErrInvalidCredentials without disclosing which field was wrong.
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	// SwitchRole updates the user's role and re-mints the token.
	SwitchRole(ctx context.Context, userID int64, role string) (string, *domain.User, error)
}
