package inmemdb

import (
	"sync"

	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/student"
)

// DB is a mutex-guarded in-memory store; the DEV/test stand-in for postgres.
type DB struct {
	mutex sync.RWMutex

	students      map[string]*student.Student
	groups        map[string]*group.Group
	memberships   map[string]*group.Membership
	templates     map[string]*assignment.Template
	instances     map[string]*assignment.Instance
	enrollments   map[string]*assignment.Enrollment
	answers       map[string]*assignment.Answer
	notifications map[string]*notification.Notification
}

func Open() (*DB, error) {
	return &DB{
		students:      make(map[string]*student.Student),
		groups:        make(map[string]*group.Group),
		memberships:   make(map[string]*group.Membership),
		templates:     make(map[string]*assignment.Template),
		instances:     make(map[string]*assignment.Instance),
		enrollments:   make(map[string]*assignment.Enrollment),
		answers:       make(map[string]*assignment.Answer),
		notifications: make(map[string]*notification.Notification),
	}, nil
}
