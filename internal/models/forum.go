package models

import "time"

// ForumMessage is a post in a discussion thread. A message may only be
// removed by its own sender (matching name and role) or by an admin.
type ForumMessage struct {
	ID         string    `db:"id" json:"id"`
	Thread     string    `db:"thread" json:"thread"`
	SenderName string    `db:"sender_name" json:"sender_name"`
	SenderRole UserRole  `db:"sender_role" json:"sender_role"`
	Content    string    `db:"content" json:"content"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ForumFilter captures filtering criteria for listing forum messages.
type ForumFilter struct {
	Thread   string
	Page     int
	PageSize int
}
