package assignment_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/assignment"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/student"
	emailsvc "github.com/trezcool/darasa/services/email"
)

type reminderFixture struct {
	*testEnv
	stu  student.Student
	inst string // instance ID
	enr  string // enrollment ID
	name string // instance name
}

// newReminderFixture enrolls one student with a deadline `days` calendar days
// from now and the given reminder preferences.
func newReminderFixture(t *testing.T, days, leadDays int, everyDay, dayBefore, receiveEmails bool) *reminderFixture {
	t.Helper()
	env := newTestEnv(t)

	tmpl := env.createTemplate(t, threeChoiceQuestions("q0"))
	grp := env.createGroup(t, "physics-101")
	inst := env.createInstance(t, tmpl, grp, "Week 1")
	stu := env.createStudent(t, "amani")
	env.addMember(t, grp, stu, receiveEmails)

	deadline := null.TimeFrom(time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour))
	enr := env.enroll(t, stu, inst, deadline, leadDays, everyDay, dayBefore)

	return &reminderFixture{testEnv: env, stu: stu, inst: inst.ID, enr: enr.ID, name: inst.Name}
}

func (f *reminderFixture) sweep(t *testing.T) {
	t.Helper()
	if err := f.svc.RunReminderSweep(time.Now().UTC()); err != nil {
		t.Fatalf("RunReminderSweep() failed: %v", err)
	}
}

func (f *reminderFixture) notifications(t *testing.T) []notification.Notification {
	t.Helper()
	notifs, err := f.notifs.QueryNotificationsByStudent(f.stu.ID)
	if err != nil {
		t.Fatalf("QueryNotificationsByStudent() failed: %v", err)
	}
	return notifs
}

func (f *reminderFixture) reminderSent(t *testing.T) bool {
	t.Helper()
	enr, err := f.repo.GetEnrollment(f.stu.ID, f.inst)
	if err != nil {
		t.Fatalf("GetEnrollment() failed: %v", err)
	}
	return enr.ReminderSent
}

func TestRunReminderSweep_sendsReminder(t *testing.T) {
	f := newReminderFixture(t, 1 /* due tomorrow */, 3, false, false, true)

	f.sweep(t)

	notifs := f.notifications(t)
	if len(notifs) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifs))
	}
	wantSubject := fmt.Sprintf("%q is due soon", f.name)
	assert.Equal(t, notification.KindAssignmentReminder, notifs[0].Kind)
	assert.Equal(t, wantSubject, notifs[0].Subject)
	assert.Equal(t, "/assignments/"+f.inst, notifs[0].Link)

	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent emails = %d, want 1", len(emailsvc.SentMessages))
	}
	msg := emailsvc.SentMessages[0]
	assert.Equal(t, wantSubject, msg.Subject)
	assert.Equal(t, f.stu.Email, msg.To[0].Address)
	if !strings.Contains(msg.TextContent, f.name) {
		t.Errorf("email body %q does not mention the assignment", msg.TextContent)
	}

	assert.True(t, f.reminderSent(t))
}

// a second sweep the same day must not re-notify without a re-arm preference.
func TestRunReminderSweep_idempotent(t *testing.T) {
	f := newReminderFixture(t, 1, 3, false, false, true)

	f.sweep(t)
	f.sweep(t)
	f.sweep(t)

	assert.Len(t, f.notifications(t), 1)
	assert.Len(t, emailsvc.SentMessages, 1)
	assert.True(t, f.reminderSent(t))
}

func TestRunReminderSweep_everyDay(t *testing.T) {
	f := newReminderFixture(t, 1, 3, true /* every day */, false, true)

	f.sweep(t)
	f.sweep(t)

	assert.Len(t, f.notifications(t), 2)
	assert.Len(t, emailsvc.SentMessages, 2)
	// the flag transitions false->true exactly once and is never reset
	assert.True(t, f.reminderSent(t))
}

func TestRunReminderSweep_dayBefore(t *testing.T) {
	t.Run("not the last day", func(t *testing.T) {
		f := newReminderFixture(t, 2, 3, false, true /* day before */, true)
		f.sweep(t)
		f.sweep(t)
		assert.Len(t, f.notifications(t), 1)
	})

	t.Run("last day", func(t *testing.T) {
		f := newReminderFixture(t, 0 /* due today */, 3, false, true, true)
		f.sweep(t)
		f.sweep(t)
		assert.Len(t, f.notifications(t), 2)
	})
}

func TestRunReminderSweep_skips(t *testing.T) {
	t.Run("no deadline", func(t *testing.T) {
		env := newTestEnv(t)
		tmpl := env.createTemplate(t, threeChoiceQuestions("q0"))
		grp := env.createGroup(t, "physics-101")
		inst := env.createInstance(t, tmpl, grp, "Week 1")
		stu := env.createStudent(t, "amani")
		env.addMember(t, grp, stu, true)
		env.enroll(t, stu, inst, null.Time{}, 3, false, false)

		if err := env.svc.RunReminderSweep(time.Now().UTC()); err != nil {
			t.Fatalf("RunReminderSweep() failed: %v", err)
		}
		assert.Empty(t, emailsvc.SentMessages)
	})

	t.Run("deadline already passed", func(t *testing.T) {
		f := newReminderFixture(t, -1, 3, false, false, true)
		f.sweep(t)
		assert.Empty(t, f.notifications(t))
		assert.False(t, f.reminderSent(t))
	})

	t.Run("outside the lead window", func(t *testing.T) {
		f := newReminderFixture(t, 5, 3, false, false, true)
		f.sweep(t)
		assert.Empty(t, f.notifications(t))
	})

	t.Run("emails opt-out", func(t *testing.T) {
		f := newReminderFixture(t, 1, 3, false, false, false /* opted out */)
		f.sweep(t)
		assert.Empty(t, f.notifications(t))
		assert.Empty(t, emailsvc.SentMessages)
		assert.False(t, f.reminderSent(t))
	})

	t.Run("assignment already completed", func(t *testing.T) {
		f := newReminderFixture(t, 1, 3, false, false, true)
		if _, err := f.svc.SubmitAnswer(f.stu.ID, f.inst, "q0", 0); err != nil {
			t.Fatalf("SubmitAnswer() failed: %v", err)
		}
		if _, err := f.svc.SubmitAnswer(f.stu.ID, f.inst, "q0", 1); err != nil {
			t.Fatalf("SubmitAnswer() failed: %v", err)
		}
		f.sweep(t)
		assert.Empty(t, f.notifications(t))
	})
}

// failingEmailService accepts every message and delivers none of it, the way
// a real backend behaves when every send errors out internally.
type failingEmailService struct {
	calls int
}

func (svc *failingEmailService) SendMessages(messages ...*core.EmailMessage) {
	svc.calls += len(messages)
}

// a broken email backend must not block the notification or the sent flag.
func TestRunReminderSweep_emailFailureDoesNotBlockNotification(t *testing.T) {
	f := newReminderFixture(t, 1, 3, false, false, true)

	mails := &failingEmailService{}
	svc := assignment.NewService(f.repo, f.students, f.groups, f.notifs, mails, nopLogger{})

	if err := svc.RunReminderSweep(time.Now().UTC()); err != nil {
		t.Fatalf("RunReminderSweep() failed: %v", err)
	}

	assert.Len(t, f.notifications(t), 1)
	assert.True(t, f.reminderSent(t))
	assert.Equal(t, 1, mails.calls)
	assert.Empty(t, emailsvc.SentMessages)
}

// moving the deadline clears the sent flag so the reminder re-arms.
func TestRunReminderSweep_deadlineChangeRearms(t *testing.T) {
	f := newReminderFixture(t, 1, 3, false, false, true)

	f.sweep(t)
	assert.Len(t, f.notifications(t), 1)
	assert.True(t, f.reminderSent(t))

	newDeadline := null.TimeFrom(time.Now().UTC().Add(48 * time.Hour))
	enr, err := f.svc.ChangeDeadline(f.enr, newDeadline)
	if err != nil {
		t.Fatalf("ChangeDeadline() failed: %v", err)
	}
	assert.False(t, enr.ReminderSent)

	f.sweep(t)
	assert.Len(t, f.notifications(t), 2)
	assert.True(t, f.reminderSent(t))
}
