package group

import (
	"errors"
	"time"
)

var (
	// errors
	ErrNotFound           = errors.New("group not found")
	ErrMembershipNotFound = errors.New("group membership not found")
)

type (
	// Group is a student cohort an assignment instance is distributed to.
	Group struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		CreatedAt time.Time `json:"created_at"` // UTC
		UpdatedAt time.Time `json:"updated_at"` // UTC
	}

	// Membership links a student to a group. ReceiveEmails is a per-group
	// opt-out for all emails sent on behalf of this group; it is independent
	// of the student's reminder preferences on an enrollment.
	Membership struct {
		ID            string    `json:"id"`
		GroupID       string    `json:"group_id"`
		StudentID     string    `json:"student_id"`
		ReceiveEmails bool      `json:"receive_emails"`
		CreatedAt     time.Time `json:"created_at"` // UTC
	}

	Repository interface {
		CreateGroup(grp Group) (Group, error)
		GetGroupByID(id string) (Group, error)
		AddMember(mbr Membership) (Membership, error)
		GetMembership(groupID, studentID string) (Membership, error)
		QueryMembershipsByGroup(groupID string) ([]Membership, error)
	}
)
