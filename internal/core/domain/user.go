package domain

import "time"

const (
	RoleAdmin  = "admin"
	RoleFarmer = "farmer"
	RoleExpert = "expert"
	RolePublic = "public"
)

// ValidRole reports whether role is one of the four platform roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleFarmer, RoleExpert, RolePublic:
		return true
	}
	return false
}

// User models an account on the platform. Role is the sole authorization
// signal and is mutable through the self-service role switch.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Location     string    `json:"location,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Avatar       string    `json:"avatar,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
