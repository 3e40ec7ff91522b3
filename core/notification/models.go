package notification

import (
	"errors"
	"time"
)

// Kinds
const (
	KindAssignmentReminder = "assignment-reminder"
)

var ErrNotFound = errors.New("notification not found")

type (
	// Notification is an in-app message for a student. For reminders it is the
	// source of truth of delivery; email is best-effort on top of it.
	Notification struct {
		ID        string    `json:"id"`
		StudentID string    `json:"student_id"`
		Kind      string    `json:"kind"`
		Subject   string    `json:"subject"`
		Link      string    `json:"link"`
		ReadAt    time.Time `json:"read_at,omitempty"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Repository interface {
		CreateNotification(notif Notification) (Notification, error)
		QueryNotificationsByStudent(studentID string) ([]Notification, error)
	}
)
