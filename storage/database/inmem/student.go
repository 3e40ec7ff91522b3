package inmemdb

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, stu := range repo.db.students {
		students = append(students, *stu)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students
}

func (repo *studentRepository) CheckUsernameUniqueness(username, email string, excluded ...student.Student) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, stu := range repo.query() {
		if isExcluded(stu, excluded) {
			continue
		}
		if username != "" && stu.Username == username {
			return student.ErrUsernameExists
		}
		if email != "" && stu.Email == email {
			return student.ErrEmailExists
		}
	}
	return nil
}

func isExcluded(stu student.Student, excluded []student.Student) bool {
	for _, ex := range excluded {
		if ex.ID == stu.ID {
			return true
		}
	}
	return false
}

func (repo *studentRepository) CreateStudent(stu student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stu.ID = uuid.New().String()
	repo.db.students[stu.ID] = &stu
	return stu, nil
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(), nil
}

func (repo *studentRepository) GetStudentByID(id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if stu, ok := repo.db.students[id]; ok {
		return *stu, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudentByUsernameOrEmail(username string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, stu := range repo.db.students {
		if stu.Username == username || stu.Email == username {
			return *stu, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(stu student.Student, isActive *bool) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.students[stu.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if stu.Name != "" {
		existing.Name = stu.Name
	}
	if stu.Username != "" {
		existing.Username = stu.Username
	}
	if stu.Email != "" {
		existing.Email = stu.Email
	}
	if stu.Roles != nil {
		existing.Roles = stu.Roles
	}
	if stu.PasswordHash != nil {
		existing.PasswordHash = stu.PasswordHash
	}
	if isActive != nil {
		existing.IsActive = *isActive
	}
	existing.UpdatedAt = stu.UpdatedAt
	return *existing, nil
}

func (repo *studentRepository) SetLastLogin(stu student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	existing, ok := repo.db.students[stu.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	existing.LastLogin = time.Now().UTC()
	return *existing, nil
}
