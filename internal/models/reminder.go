package models

import "time"

// Reminder is a teacher-authored task or notice targeted at a class group.
type Reminder struct {
	ID         string    `db:"id" json:"id"`
	Text       string    `db:"text" json:"text"`
	Type       string    `db:"type" json:"type"`
	ClassGroup string    `db:"class_group" json:"class_group"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	Done       bool      `db:"done" json:"done"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ReminderFilter captures filtering criteria for listing reminders.
type ReminderFilter struct {
	TeacherID  string
	ClassGroup string
	Done       *bool
}
