package models

import "time"

// Parent represents a guardian account. Children are linked through
// students.parent_id and resolved by lookup at read time.
type Parent struct {
	ID        string    `db:"id" json:"id"`
	UserID    *string   `db:"user_id" json:"user_id,omitempty"`
	FullName  string    `db:"full_name" json:"full_name"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ParentDetail includes the parent's linked children.
type ParentDetail struct {
	Parent
	Children []Student `json:"children"`
}
