package assignment

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/notification"
)

const reminderEmailTemplate = "assignment-reminder"

// daysToExpiry counts the calendar-day boundaries between now and the
// deadline, both taken in UTC. 0 means the deadline falls within the current
// day; negative means it already passed.
func daysToExpiry(now, deadline time.Time) int {
	nowDay := truncateToDay(now.UTC())
	deadlineDay := truncateToDay(deadline.UTC())
	return int(deadlineDay.Sub(nowDay).Hours() / 24)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// reminderDue decides whether this tick may emit a reminder for enr.
// The first reminder always goes out; after that only the per-enrollment
// preferences re-arm it: daily, or once more on the last day.
func reminderDue(enr Enrollment, lastDay bool) bool {
	if !enr.ReminderSent {
		return true
	}
	if enr.RemindEveryDay {
		return true
	}
	return enr.RemindDayBefore && lastDay
}

// RunReminderSweep walks every assignment instance and reminds each enrolled,
// non-completed student whose deadline is within their reminder lead time.
// Per-student failures are logged and skipped; one bad row must not starve the
// rest of the sweep.
func (svc *Service) RunReminderSweep(now time.Time) error {
	instances, err := svc.repo.QueryAllInstances()
	if err != nil {
		return errors.Wrap(err, "querying instances")
	}

	for _, inst := range instances {
		tmpl, err := svc.repo.GetTemplateByID(inst.TemplateID)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("reminder sweep: template %s: %v", inst.TemplateID, err), err)
			continue
		}
		qs := Questions(inst, tmpl)

		enrollments, err := svc.repo.QueryEnrollmentsByInstance(inst.ID)
		if err != nil {
			svc.logger.Error(fmt.Sprintf("reminder sweep: enrollments of %s: %v", inst.ID, err), err)
			continue
		}
		for _, enr := range enrollments {
			svc.remindEnrollment(inst, qs, enr, now)
		}
	}
	return nil
}

func (svc *Service) remindEnrollment(inst Instance, qs []Question, enr Enrollment, now time.Time) {
	if !enr.Deadline.Valid {
		return
	}
	days := daysToExpiry(now, enr.Deadline.Time)
	if days < 0 || days > enr.ReminderLeadDays {
		return
	}

	mbr, err := svc.groups.GetMembership(inst.GroupID, enr.StudentID)
	if err != nil {
		if err != group.ErrMembershipNotFound {
			svc.logger.Error(fmt.Sprintf("reminder sweep: membership of %s: %v", enr.StudentID, err), err)
		}
		return
	}
	if !mbr.ReceiveEmails {
		return
	}

	answers, err := svc.repo.AnswersFor(enr.StudentID, inst.ID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("reminder sweep: answers of %s: %v", enr.StudentID, err), err)
		return
	}
	if ComputeResults(qs, answers).Completed {
		return
	}

	if !reminderDue(enr, days == 0) {
		return
	}

	stu, err := svc.students.GetStudentByID(enr.StudentID)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("reminder sweep: student %s: %v", enr.StudentID, err), err)
		return
	}

	subject := fmt.Sprintf("%q is due soon", inst.Name)
	link := "/assignments/" + inst.ID

	// the in-app notification is the source of truth of delivery; no email is
	// attempted (and the flag untouched) when it cannot be recorded.
	if _, err = svc.notifs.CreateNotification(notification.Notification{
		StudentID: stu.ID,
		Kind:      notification.KindAssignmentReminder,
		Subject:   subject,
		Link:      link,
		CreatedAt: now.UTC(),
	}); err != nil {
		svc.logger.Error(fmt.Sprintf("reminder sweep: notifying %s: %v", stu.ID, err), err)
		return
	}

	// best-effort: the email service sends asynchronously and logs failures.
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: stu.Name, Address: stu.Email}},
		Subject:      subject,
		TemplateName: reminderEmailTemplate,
		TemplateData: struct {
			Name       string
			Assignment string
			Days       int
			Link       string
		}{stu.Name, inst.Name, days, link},
	})

	if !enr.ReminderSent {
		if _, err = svc.repo.MarkReminderSent(enr.ID); err != nil {
			svc.logger.Error(fmt.Sprintf("reminder sweep: marking %s: %v", enr.ID, err), err)
		}
	}
}
