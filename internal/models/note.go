package models

import "time"

// Note is a grade awarded to a student for a course, on a 0-20 scale.
type Note struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Value     float64   `db:"value" json:"value"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NoteDetail joins student and course context onto a note row.
type NoteDetail struct {
	Note
	StudentName   string `db:"student_name" json:"student_name"`
	CourseSubject string `db:"course_subject" json:"course_subject"`
}

// NoteFilter captures filtering criteria for listing notes.
type NoteFilter struct {
	StudentID string
	CourseID  string
	Since     *time.Time
}
