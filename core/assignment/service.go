package assignment

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/group"
	"github.com/trezcool/darasa/core/notification"
	"github.com/trezcool/darasa/core/student"
)

// orderUpdateRetries bounds the optimistic-concurrency retry loop on
// ModifyOrder; past that the caller gets ErrOrderConflict.
const orderUpdateRetries = 3

type (
	Repository interface {
		CreateTemplate(tmpl Template) (Template, error)
		GetTemplateByID(id string) (Template, error)

		CreateInstance(inst Instance) (Instance, error)
		GetInstanceByID(id string) (Instance, error)
		QueryAllInstances() ([]Instance, error)
		// UpdateInstanceOrder replaces the instance's order iff its Version
		// still matches the stored one; fails with ErrOrderConflict otherwise.
		UpdateInstanceOrder(inst Instance) (Instance, error)

		CreateEnrollment(enr Enrollment) (Enrollment, error)
		GetEnrollment(studentID, instanceID string) (Enrollment, error)
		QueryEnrollmentsByInstance(instanceID string) ([]Enrollment, error)
		// UpdateEnrollmentDeadline replaces the deadline and clears ReminderSent.
		UpdateEnrollmentDeadline(enrollmentID string, deadline null.Time) (Enrollment, error)
		// MarkReminderSent transitions ReminderSent false->true; it never
		// resets the flag and reports whether this call made the transition.
		MarkReminderSent(enrollmentID string) (bool, error)

		CreateAnswer(ans Answer) (Answer, error)
		UpdateAnswer(ans Answer) (Answer, error)
		// AnswersFor returns the student's answers scoped strictly by
		// assignment-instance identity.
		AnswersFor(studentID, instanceID string) ([]Answer, error)
	}

	Service struct {
		repo     Repository
		students student.Repository
		groups   group.Repository
		notifs   notification.Repository
		mailSvc  core.EmailService
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	students student.Repository,
	groups group.Repository,
	notifs notification.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		students: students,
		groups:   groups,
		notifs:   notifs,
		mailSvc:  mailSvc,
		logger:   logger,
	}
}

// CreateInstance distributes a template to a group, starting from the
// identity question order.
func (svc *Service) CreateInstance(templateID, groupID, name string) (Instance, error) {
	tmpl, err := svc.repo.GetTemplateByID(templateID)
	if err != nil {
		return Instance{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateInstance(Instance{
		TemplateID: tmpl.ID,
		GroupID:    groupID,
		Name:       name,
		Order:      IdentityOrder(len(tmpl.Questions)),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// Enroll links a student to an instance; ReminderSent starts cleared.
func (svc *Service) Enroll(enr Enrollment) (Enrollment, error) {
	now := time.Now().UTC()
	enr.ReminderSent = false
	enr.CreatedAt = now
	enr.UpdatedAt = now
	return svc.repo.CreateEnrollment(enr)
}

// ChangeDeadline moves an enrollment's deadline; this re-arms the reminder.
func (svc *Service) ChangeDeadline(enrollmentID string, deadline null.Time) (Enrollment, error) {
	return svc.repo.UpdateEnrollmentDeadline(enrollmentID, deadline)
}

// OrderedQuestions resolves an instance and its questions in instance order.
func (svc *Service) OrderedQuestions(instanceID string) (Instance, []Question, error) {
	inst, err := svc.repo.GetInstanceByID(instanceID)
	if err != nil {
		return Instance{}, nil, err
	}
	tmpl, err := svc.repo.GetTemplateByID(inst.TemplateID)
	if err != nil {
		return Instance{}, nil, err
	}
	return inst, Questions(inst, tmpl), nil
}

// ModifyOrder validates candidate against the instance's question count and
// applies it atomically. An invalid candidate never touches the stored order;
// concurrent updates are serialized by the version check and retried a few
// times before giving up with ErrOrderConflict.
func (svc *Service) ModifyOrder(instanceID, candidate string) (Instance, error) {
	for attempt := 0; attempt < orderUpdateRetries; attempt++ {
		inst, err := svc.repo.GetInstanceByID(instanceID)
		if err != nil {
			return Instance{}, err
		}
		tmpl, err := svc.repo.GetTemplateByID(inst.TemplateID)
		if err != nil {
			return Instance{}, err
		}

		order, err := ParseOrder(candidate, len(tmpl.Questions))
		if err != nil {
			return Instance{}, err
		}

		inst.Order = order
		inst.UpdatedAt = time.Now().UTC()
		updated, err := svc.repo.UpdateInstanceOrder(inst)
		if errors.Is(err, ErrOrderConflict) {
			continue
		}
		return updated, err
	}
	return Instance{}, ErrOrderConflict
}

// CurrentQuestion runs the two-phase scan for one enrolled student.
func (svc *Service) CurrentQuestion(studentID, instanceID string) (*Question, ProgressState, error) {
	if _, err := svc.repo.GetEnrollment(studentID, instanceID); err != nil {
		return nil, FirstRoundInProgress, err
	}
	_, qs, err := svc.OrderedQuestions(instanceID)
	if err != nil {
		return nil, FirstRoundInProgress, err
	}
	answers, err := svc.repo.AnswersFor(studentID, instanceID)
	if err != nil {
		return nil, FirstRoundInProgress, err
	}
	cur, state := CurrentQuestion(qs, answers)
	return cur, state, nil
}

// Results computes one student's completion flag and grade.
func (svc *Service) Results(studentID, instanceID string) (Results, error) {
	if _, err := svc.repo.GetEnrollment(studentID, instanceID); err != nil {
		return Results{}, err
	}
	_, qs, err := svc.OrderedQuestions(instanceID)
	if err != nil {
		return Results{}, err
	}
	answers, err := svc.repo.AnswersFor(studentID, instanceID)
	if err != nil {
		return Results{}, err
	}
	return ComputeResults(qs, answers), nil
}

// CohortReport rolls up the whole roster's progress per question.
func (svc *Service) CohortReport(instanceID string) ([]QuestionStats, error) {
	inst, qs, err := svc.OrderedQuestions(instanceID)
	if err != nil {
		return nil, err
	}

	members, err := svc.groups.QueryMembershipsByGroup(inst.GroupID)
	if err != nil {
		return nil, err
	}

	roster := make([]student.Student, 0, len(members))
	answersByStudent := make(map[string][]Answer, len(members))
	for _, mbr := range members {
		stu, err := svc.students.GetStudentByID(mbr.StudentID)
		if err != nil {
			return nil, err
		}
		answers, err := svc.repo.AnswersFor(stu.ID, inst.ID)
		if err != nil {
			return nil, err
		}
		roster = append(roster, stu)
		answersByStudent[stu.ID] = answers
	}

	return AggregateProgress(qs, roster, answersByStudent), nil
}

// submission validation messages
const (
	errAlreadyDone        = "there is nothing left to answer."
	errNotCurrentQuestion = "this is not the current question."
	errInvalidChoice      = "invalid answer choice."
)

func newSubmitError(msg string) error {
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "question_id", Error: msg})
}

// SubmitAnswer records a choice for the student's *current* question only, so
// writes can never break the two-round ordering the scans rely on. The first
// round creates the answer record; the second round fills its second choice.
func (svc *Service) SubmitAnswer(studentID, instanceID, questionID string, choice int) (Answer, error) {
	if _, err := svc.repo.GetEnrollment(studentID, instanceID); err != nil {
		return Answer{}, err
	}
	_, qs, err := svc.OrderedQuestions(instanceID)
	if err != nil {
		return Answer{}, err
	}
	answers, err := svc.repo.AnswersFor(studentID, instanceID)
	if err != nil {
		return Answer{}, err
	}

	cur, state := CurrentQuestion(qs, answers)
	if cur == nil {
		return Answer{}, newSubmitError(errAlreadyDone)
	}
	if cur.ID != questionID {
		return Answer{}, newSubmitError(errNotCurrentQuestion)
	}
	if choice < 0 || choice >= len(cur.Choices) {
		return Answer{}, core.NewValidationError(
			errors.New(errInvalidChoice), core.FieldError{Field: "choice", Error: errInvalidChoice})
	}

	now := time.Now().UTC()
	if state == FirstRoundInProgress {
		return svc.repo.CreateAnswer(Answer{
			StudentID:   studentID,
			InstanceID:  instanceID,
			QuestionID:  questionID,
			FirstChoice: choice,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	for _, a := range answers {
		if a.QuestionID == questionID {
			a.SecondChoice = null.IntFrom(choice)
			a.UpdatedAt = now
			return svc.repo.UpdateAnswer(a)
		}
	}
	return Answer{}, ErrAnswerNotFound
}
