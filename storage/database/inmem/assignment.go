package inmemdb

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/assignment"
)

type assignmentRepository struct {
	db *DB
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateTemplate(tmpl assignment.Template) (assignment.Template, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tmpl.ID = uuid.New().String()
	repo.db.templates[tmpl.ID] = &tmpl
	return tmpl, nil
}

func (repo *assignmentRepository) GetTemplateByID(id string) (assignment.Template, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tmpl, ok := repo.db.templates[id]; ok {
		return *tmpl, nil
	}
	return assignment.Template{}, assignment.ErrTemplateNotFound
}

func (repo *assignmentRepository) CreateInstance(inst assignment.Instance) (assignment.Instance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	inst.ID = uuid.New().String()
	repo.db.instances[inst.ID] = &inst
	return inst, nil
}

func (repo *assignmentRepository) GetInstanceByID(id string) (assignment.Instance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inst, ok := repo.db.instances[id]; ok {
		return *inst, nil
	}
	return assignment.Instance{}, assignment.ErrInstanceNotFound
}

func (repo *assignmentRepository) QueryAllInstances() ([]assignment.Instance, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	instances := make([]assignment.Instance, 0, len(repo.db.instances))
	for _, inst := range repo.db.instances {
		instances = append(instances, *inst)
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })
	return instances, nil
}

func (repo *assignmentRepository) UpdateInstanceOrder(inst assignment.Instance) (assignment.Instance, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.instances[inst.ID]
	if !ok {
		return assignment.Instance{}, assignment.ErrInstanceNotFound
	}
	if existing.Version != inst.Version {
		return assignment.Instance{}, assignment.ErrOrderConflict
	}
	existing.Order = inst.Order
	existing.Version++
	existing.UpdatedAt = inst.UpdatedAt
	return *existing, nil
}

func (repo *assignmentRepository) CreateEnrollment(enr assignment.Enrollment) (assignment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr.ID = uuid.New().String()
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *assignmentRepository) GetEnrollment(studentID, instanceID string) (assignment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.InstanceID == instanceID {
			return *enr, nil
		}
	}
	return assignment.Enrollment{}, assignment.ErrEnrollmentNotFound
}

func (repo *assignmentRepository) QueryEnrollmentsByInstance(instanceID string) ([]assignment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]assignment.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.InstanceID == instanceID {
			enrollments = append(enrollments, *enr)
		}
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })
	return enrollments, nil
}

func (repo *assignmentRepository) UpdateEnrollmentDeadline(enrollmentID string, deadline null.Time) (assignment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.enrollments[enrollmentID]
	if !ok {
		return assignment.Enrollment{}, assignment.ErrEnrollmentNotFound
	}
	existing.Deadline = deadline
	existing.ReminderSent = false
	existing.UpdatedAt = time.Now().UTC()
	return *existing, nil
}

func (repo *assignmentRepository) MarkReminderSent(enrollmentID string) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.enrollments[enrollmentID]
	if !ok {
		return false, assignment.ErrEnrollmentNotFound
	}
	if existing.ReminderSent {
		return false, nil
	}
	existing.ReminderSent = true
	existing.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (repo *assignmentRepository) CreateAnswer(ans assignment.Answer) (assignment.Answer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ans.ID = uuid.New().String()
	repo.db.answers[ans.ID] = &ans
	return ans, nil
}

func (repo *assignmentRepository) UpdateAnswer(ans assignment.Answer) (assignment.Answer, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.answers[ans.ID]
	if !ok {
		return assignment.Answer{}, assignment.ErrAnswerNotFound
	}
	existing.SecondChoice = ans.SecondChoice
	existing.UpdatedAt = ans.UpdatedAt
	return *existing, nil
}

func (repo *assignmentRepository) AnswersFor(studentID, instanceID string) ([]assignment.Answer, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	answers := make([]assignment.Answer, 0)
	for _, ans := range repo.db.answers {
		if ans.StudentID == studentID && ans.InstanceID == instanceID {
			answers = append(answers, *ans)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].CreatedAt.Before(answers[j].CreatedAt) })
	return answers, nil
}
