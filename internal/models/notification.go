package models

import "time"

// NotificationPriority orders feed entries.
type NotificationPriority string

const (
	PriorityHigh   NotificationPriority = "high"
	PriorityMedium NotificationPriority = "medium"
	PriorityLow    NotificationPriority = "low"
)

// Notification kinds produced by the feed aggregator.
const (
	NotificationAbsence       = "absence"
	NotificationGoodNote      = "good_note"
	NotificationConcernNote   = "concerning_note"
	NotificationUnpaidInvoice = "unpaid_invoice"
)

// Notification is a single entry in a parent's aggregated feed.
type Notification struct {
	Kind        string               `json:"kind"`
	Priority    NotificationPriority `json:"priority"`
	StudentID   string               `json:"student_id"`
	StudentName string               `json:"student_name"`
	CourseID    string               `json:"course_id,omitempty"`
	Subject     string               `json:"subject,omitempty"`
	Message     string               `json:"message"`
	OccurredAt  time.Time            `json:"occurred_at"`
}

// FeedStatus distinguishes a fully assembled feed from a degraded one.
type FeedStatus string

const (
	FeedComplete FeedStatus = "complete"
	FeedPartial  FeedStatus = "partial"
)

// NotificationFeed is the aggregation result for one parent. Status is
// explicit so callers can tell "no data" apart from "some sources failed".
type NotificationFeed struct {
	ParentID      string         `json:"parent_id"`
	Status        FeedStatus     `json:"status"`
	FailedSources int            `json:"failed_sources"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Entries       []Notification `json:"entries"`
}
