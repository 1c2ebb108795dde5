package models

import "time"

// Student represents a pupil enrolled in a class group.
type Student struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	FullName   string    `db:"full_name" json:"full_name"`
	ClassGroup string    `db:"class_group" json:"class_group"`
	ParentID   *string   `db:"parent_id" json:"parent_id,omitempty"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	ClassGroup string
	ParentID   string
	Active     *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
