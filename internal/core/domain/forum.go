package domain

import "time"

// Forum is a discussion topic grouped under a sector category.
type Forum struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Sector      string    `json:"sector,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedBy   int64     `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// ForumPost is a single message inside a forum thread.
type ForumPost struct {
	ID        int64     `json:"id"`
	ForumID   int64     `json:"forum_id"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
