package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/friendsofgo/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/assignment"
)

type (
	templateRow struct {
		ID        string          `db:"id"`
		Name      string          `db:"name"`
		Published bool            `db:"published"`
		Questions json.RawMessage `db:"questions"`
		CreatedAt time.Time       `db:"created_at"`
		UpdatedAt time.Time       `db:"updated_at"`
	}

	instanceRow struct {
		ID            string    `db:"id"`
		TemplateID    string    `db:"template_id"`
		GroupID       string    `db:"group_id"`
		Name          string    `db:"name"`
		QuestionOrder string    `db:"question_order"`
		Version       int       `db:"version"`
		CreatedAt     time.Time `db:"created_at"`
		UpdatedAt     time.Time `db:"updated_at"`
	}

	enrollmentRow struct {
		ID               string    `db:"id"`
		StudentID        string    `db:"student_id"`
		InstanceID       string    `db:"instance_id"`
		Deadline         null.Time `db:"deadline"`
		ReminderLeadDays int       `db:"reminder_lead_days"`
		RemindEveryDay   bool      `db:"remind_every_day"`
		RemindDayBefore  bool      `db:"remind_day_before"`
		ReminderSent     bool      `db:"reminder_sent"`
		CreatedAt        time.Time `db:"created_at"`
		UpdatedAt        time.Time `db:"updated_at"`
	}

	answerRow struct {
		ID           string    `db:"id"`
		StudentID    string    `db:"student_id"`
		InstanceID   string    `db:"instance_id"`
		QuestionID   string    `db:"question_id"`
		FirstChoice  int       `db:"first_choice"`
		SecondChoice null.Int  `db:"second_choice"`
		CreatedAt    time.Time `db:"created_at"`
		UpdatedAt    time.Time `db:"updated_at"`
	}
)

// serializeOrder renders an order for the question_order text column.
func serializeOrder(order []int) string {
	parts := make([]string, 0, len(order))
	for _, idx := range order {
		parts = append(parts, strconv.Itoa(idx))
	}
	return strings.Join(parts, ",")
}

// deserializeOrder parses a stored question_order value. Stored orders were
// validated on write so a parse failure here is a data corruption error.
func deserializeOrder(stored string) ([]int, error) {
	if stored == "" {
		return []int{}, nil
	}
	parts := strings.Split(stored, ",")
	order := make([]int, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, errors.Wrapf(err, "corrupt question order %q", stored)
		}
		order = append(order, idx)
	}
	return order, nil
}

func (row templateRow) template() (assignment.Template, error) {
	var qs []assignment.Question
	if err := json.Unmarshal(row.Questions, &qs); err != nil {
		return assignment.Template{}, errors.Wrap(err, "decoding template questions")
	}
	return assignment.Template{
		ID:        row.ID,
		Name:      row.Name,
		Published: row.Published,
		Questions: qs,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (row instanceRow) instance() (assignment.Instance, error) {
	order, err := deserializeOrder(row.QuestionOrder)
	if err != nil {
		return assignment.Instance{}, err
	}
	return assignment.Instance{
		ID:         row.ID,
		TemplateID: row.TemplateID,
		GroupID:    row.GroupID,
		Name:       row.Name,
		Order:      order,
		Version:    row.Version,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}, nil
}

func (row enrollmentRow) enrollment() assignment.Enrollment {
	return assignment.Enrollment{
		ID:               row.ID,
		StudentID:        row.StudentID,
		InstanceID:       row.InstanceID,
		Deadline:         row.Deadline,
		ReminderLeadDays: row.ReminderLeadDays,
		RemindEveryDay:   row.RemindEveryDay,
		RemindDayBefore:  row.RemindDayBefore,
		ReminderSent:     row.ReminderSent,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

func (row answerRow) answer() assignment.Answer {
	return assignment.Answer{
		ID:           row.ID,
		StudentID:    row.StudentID,
		InstanceID:   row.InstanceID,
		QuestionID:   row.QuestionID,
		FirstChoice:  row.FirstChoice,
		SecondChoice: row.SecondChoice,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

type assignmentRepository struct {
	db *sqlx.DB
}

var _ assignment.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo assignmentRepository) CreateTemplate(tmpl assignment.Template) (assignment.Template, error) {
	tmpl.ID = uuid.New().String()
	qs, err := json.Marshal(tmpl.Questions)
	if err != nil {
		return assignment.Template{}, errors.Wrap(err, "encoding template questions")
	}
	_, err = repo.db.Exec(`
		INSERT INTO assignment_template (id, name, published, questions, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tmpl.ID, tmpl.Name, tmpl.Published, qs, tmpl.CreatedAt.UTC(), tmpl.UpdatedAt.UTC())
	if err != nil {
		return assignment.Template{}, errors.Wrap(err, "inserting template")
	}
	return tmpl, nil
}

func (repo assignmentRepository) GetTemplateByID(id string) (assignment.Template, error) {
	var row templateRow
	if err := repo.db.Get(&row, `SELECT * FROM assignment_template WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return assignment.Template{}, assignment.ErrTemplateNotFound
		}
		return assignment.Template{}, errors.Wrap(err, "getting template by id")
	}
	return row.template()
}

func (repo assignmentRepository) CreateInstance(inst assignment.Instance) (assignment.Instance, error) {
	inst.ID = uuid.New().String()
	inst.Version = 0
	_, err := repo.db.Exec(`
		INSERT INTO assignment_instance (id, template_id, group_id, name, question_order, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inst.ID, inst.TemplateID, inst.GroupID, inst.Name,
		serializeOrder(inst.Order), inst.Version, inst.CreatedAt.UTC(), inst.UpdatedAt.UTC())
	if err != nil {
		return assignment.Instance{}, errors.Wrap(err, "inserting instance")
	}
	return inst, nil
}

func (repo assignmentRepository) GetInstanceByID(id string) (assignment.Instance, error) {
	var row instanceRow
	if err := repo.db.Get(&row, `SELECT * FROM assignment_instance WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return assignment.Instance{}, assignment.ErrInstanceNotFound
		}
		return assignment.Instance{}, errors.Wrap(err, "getting instance by id")
	}
	return row.instance()
}

func (repo assignmentRepository) QueryAllInstances() ([]assignment.Instance, error) {
	var rows []instanceRow
	if err := repo.db.Select(&rows, `SELECT * FROM assignment_instance ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying instances")
	}
	instances := make([]assignment.Instance, 0, len(rows))
	for _, row := range rows {
		inst, err := row.instance()
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, nil
}

func (repo assignmentRepository) UpdateInstanceOrder(inst assignment.Instance) (assignment.Instance, error) {
	res, err := repo.db.Exec(`
		UPDATE assignment_instance
		SET question_order = $1, version = version + 1, updated_at = $2
		WHERE id = $3 AND version = $4`,
		serializeOrder(inst.Order), inst.UpdatedAt.UTC(), inst.ID, inst.Version)
	if err != nil {
		return assignment.Instance{}, errors.Wrap(err, "updating instance order")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return assignment.Instance{}, errors.Wrap(err, "updating instance order")
	}
	if n == 0 {
		if _, err = repo.GetInstanceByID(inst.ID); err != nil {
			return assignment.Instance{}, err
		}
		return assignment.Instance{}, assignment.ErrOrderConflict
	}
	return repo.GetInstanceByID(inst.ID)
}

func (repo assignmentRepository) CreateEnrollment(enr assignment.Enrollment) (assignment.Enrollment, error) {
	enr.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO enrollment (id, student_id, instance_id, deadline, reminder_lead_days,
			remind_every_day, remind_day_before, reminder_sent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		enr.ID, enr.StudentID, enr.InstanceID, enr.Deadline, enr.ReminderLeadDays,
		enr.RemindEveryDay, enr.RemindDayBefore, enr.ReminderSent, enr.CreatedAt.UTC(), enr.UpdatedAt.UTC())
	if err != nil {
		return assignment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo assignmentRepository) GetEnrollment(studentID, instanceID string) (assignment.Enrollment, error) {
	var row enrollmentRow
	err := repo.db.Get(&row, `SELECT * FROM enrollment WHERE student_id = $1 AND instance_id = $2`, studentID, instanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return assignment.Enrollment{}, assignment.ErrEnrollmentNotFound
		}
		return assignment.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return row.enrollment(), nil
}

func (repo assignmentRepository) QueryEnrollmentsByInstance(instanceID string) ([]assignment.Enrollment, error) {
	var rows []enrollmentRow
	err := repo.db.Select(&rows, `SELECT * FROM enrollment WHERE instance_id = $1 ORDER BY created_at`, instanceID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrollments := make([]assignment.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.enrollment())
	}
	return enrollments, nil
}

func (repo assignmentRepository) UpdateEnrollmentDeadline(enrollmentID string, deadline null.Time) (assignment.Enrollment, error) {
	res, err := repo.db.Exec(`
		UPDATE enrollment SET deadline = $1, reminder_sent = false, updated_at = $2 WHERE id = $3`,
		deadline, time.Now().UTC(), enrollmentID)
	if err != nil {
		return assignment.Enrollment{}, errors.Wrap(err, "updating enrollment deadline")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return assignment.Enrollment{}, errors.Wrap(err, "updating enrollment deadline")
	}
	if n == 0 {
		return assignment.Enrollment{}, assignment.ErrEnrollmentNotFound
	}

	var row enrollmentRow
	if err = repo.db.Get(&row, `SELECT * FROM enrollment WHERE id = $1`, enrollmentID); err != nil {
		return assignment.Enrollment{}, errors.Wrap(err, "getting enrollment")
	}
	return row.enrollment(), nil
}

func (repo assignmentRepository) MarkReminderSent(enrollmentID string) (bool, error) {
	res, err := repo.db.Exec(`
		UPDATE enrollment SET reminder_sent = true, updated_at = $1 WHERE id = $2 AND reminder_sent = false`,
		time.Now().UTC(), enrollmentID)
	if err != nil {
		return false, errors.Wrap(err, "marking reminder sent")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "marking reminder sent")
	}
	return n > 0, nil
}

func (repo assignmentRepository) CreateAnswer(ans assignment.Answer) (assignment.Answer, error) {
	ans.ID = uuid.New().String()
	_, err := repo.db.Exec(`
		INSERT INTO answer (id, student_id, instance_id, question_id, first_choice, second_choice, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ans.ID, ans.StudentID, ans.InstanceID, ans.QuestionID,
		ans.FirstChoice, ans.SecondChoice, ans.CreatedAt.UTC(), ans.UpdatedAt.UTC())
	if err != nil {
		return assignment.Answer{}, errors.Wrap(err, "inserting answer")
	}
	return ans, nil
}

func (repo assignmentRepository) UpdateAnswer(ans assignment.Answer) (assignment.Answer, error) {
	res, err := repo.db.Exec(`
		UPDATE answer SET second_choice = $1, updated_at = $2 WHERE id = $3`,
		ans.SecondChoice, ans.UpdatedAt.UTC(), ans.ID)
	if err != nil {
		return assignment.Answer{}, errors.Wrap(err, "updating answer")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return assignment.Answer{}, errors.Wrap(err, "updating answer")
	}
	if n == 0 {
		return assignment.Answer{}, assignment.ErrAnswerNotFound
	}
	return ans, nil
}

func (repo assignmentRepository) AnswersFor(studentID, instanceID string) ([]assignment.Answer, error) {
	var rows []answerRow
	err := repo.db.Select(&rows,
		`SELECT * FROM answer WHERE student_id = $1 AND instance_id = $2 ORDER BY created_at`, studentID, instanceID)
	if err != nil {
		return nil, errors.Wrap(err, "querying answers")
	}
	answers := make([]assignment.Answer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, row.answer())
	}
	return answers, nil
}
