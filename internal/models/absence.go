package models

import "time"

// Absence records a student missing a course session.
type Absence struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Date      time.Time `db:"date" json:"date"`
	Justified bool      `db:"justified" json:"justified"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AbsenceDetail joins student and course context onto an absence row.
type AbsenceDetail struct {
	Absence
	StudentName   string `db:"student_name" json:"student_name"`
	CourseSubject string `db:"course_subject" json:"course_subject"`
}

// AbsenceFilter captures filtering criteria for listing absences.
type AbsenceFilter struct {
	StudentID string
	CourseID  string
	Since     *time.Time
}
