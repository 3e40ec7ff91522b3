package assignment

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrTemplateNotFound   = errors.New("assignment template not found")
	ErrInstanceNotFound   = errors.New("assignment not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAnswerNotFound     = errors.New("answer not found")
	ErrOrderConflict      = errors.New("assignment was modified concurrently")
)

type (
	// Choice is one of a question's answer options.
	Choice struct {
		Text    string `json:"text"`
		Correct bool   `json:"correct"`
	}

	// Question belongs to a Template and is referenced, never mutated, by the
	// progress engine.
	Question struct {
		ID      string   `json:"id"`
		Text    string   `json:"text"`
		Choices []Choice `json:"choices"`
	}

	// Template is an ordered list of questions; immutable once published.
	Template struct {
		ID        string     `json:"id"`
		Name      string     `json:"name"`
		Published bool       `json:"published"`
		Questions []Question `json:"questions"`
		CreatedAt time.Time  `json:"created_at"` // UTC
		UpdatedAt time.Time  `json:"updated_at"` // UTC
	}

	// Instance is a template as distributed to one group, with its own
	// question order. Order is always a permutation of [0, len(questions));
	// it starts out as the identity order and may only be replaced wholesale
	// through ModifyOrder. Version drives the optimistic concurrency check on
	// order updates.
	Instance struct {
		ID         string    `json:"id"`
		TemplateID string    `json:"template_id"`
		GroupID    string    `json:"group_id"`
		Name       string    `json:"name"`
		Order      []int     `json:"order"`
		Version    int       `json:"-"`
		CreatedAt  time.Time `json:"created_at"` // UTC
		UpdatedAt  time.Time `json:"updated_at"` // UTC
	}

	// Enrollment links a student to an assignment instance. ReminderSent only
	// ever transitions false->true from the reminder scheduler; it is reset by
	// a deadline change.
	Enrollment struct {
		ID               string    `json:"id"`
		StudentID        string    `json:"student_id"`
		InstanceID       string    `json:"assignment_id"`
		Deadline         null.Time `json:"deadline"`
		ReminderLeadDays int       `json:"reminder_lead_days"`
		RemindEveryDay   bool      `json:"remind_every_day"`
		RemindDayBefore  bool      `json:"remind_day_before"`
		ReminderSent     bool      `json:"reminder_sent"`
		CreatedAt        time.Time `json:"created_at"` // UTC
		UpdatedAt        time.Time `json:"updated_at"` // UTC
	}

	// Answer is one student's attempt at one question of one instance.
	// Answers are written by the submission flow and read-only to the
	// progress engine. A missing SecondChoice means "first round only".
	Answer struct {
		ID           string    `json:"id"`
		StudentID    string    `json:"student_id"`
		InstanceID   string    `json:"assignment_id"`
		QuestionID   string    `json:"question_id"`
		FirstChoice  int       `json:"first_choice"`
		SecondChoice null.Int  `json:"second_choice"`
		CreatedAt    time.Time `json:"created_at"` // UTC
		UpdatedAt    time.Time `json:"updated_at"` // UTC
	}

	// Results is the completion flag and grade derived from a student's
	// answers, strictly scoped to one instance's own question set.
	Results struct {
		NumQuestions    int     `json:"n"`
		NumCompleted    int     `json:"n_completed"`
		NumFirstCorrect int     `json:"n_first_correct"`
		NumCorrect      int     `json:"n_correct"`
		Grade           float64 `json:"grade"`
		Completed       bool    `json:"completed"`
	}
)

// IsCorrect reports whether choice indexes a correct answer option.
func (q Question) IsCorrect(choice int) bool {
	return choice >= 0 && choice < len(q.Choices) && q.Choices[choice].Correct
}

// HasSecondChoice reports whether the second round was answered.
func (a Answer) HasSecondChoice() bool { return a.SecondChoice.Valid }

// IdentityOrder returns [0..n-1]; the order every new instance starts with.
func IdentityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// Questions projects the instance's order onto the template's question list,
// yielding the ordered question list every other component works with.
func Questions(inst Instance, tmpl Template) []Question {
	qs := make([]Question, 0, len(inst.Order))
	for _, idx := range inst.Order {
		qs = append(qs, tmpl.Questions[idx])
	}
	return qs
}
