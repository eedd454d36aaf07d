package domain

import "time"

const (
	ConnectionPending      = "pending"
	ConnectionApproved     = "approved"
	ConnectionInDiscussion = "in_discussion"
	ConnectionDeclined     = "declined"
	ConnectionActive       = "active"
)

// ValidConnectionStatus reports whether status is a known connection state.
func ValidConnectionStatus(status string) bool {
	switch status {
	case ConnectionPending, ConnectionApproved, ConnectionInDiscussion,
		ConnectionDeclined, ConnectionActive:
		return true
	}
	return false
}

// SectorConnection links a farmer to a sector partnership. There is no state
// machine over Status; the current value always wins.
type SectorConnection struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	SectorID  int64     `json:"sector_id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
