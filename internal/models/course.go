package models

import "time"

// Course represents a taught course bound to a class group.
type Course struct {
	ID         string    `db:"id" json:"id"`
	Subject    string    `db:"subject" json:"subject"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	ClassGroup string    `db:"class_group" json:"class_group"`
	Schedule   string    `db:"schedule" json:"schedule"`
	Room       string    `db:"room" json:"room"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// CourseDetail joins the teacher name onto a course row.
type CourseDetail struct {
	Course
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	TeacherID  string
	ClassGroup string
	Subject    string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// BulkDeleteOutcome reports the per-identifier result of a best-effort
// multi-delete. Succeeded deletions are not rolled back when others fail.
type BulkDeleteOutcome struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	Error   string `json:"error,omitempty"`
}
