package student

import (
	"errors"
	"time"

	"github.com/trezcool/darasa/core"
)

var (
	// errors
	ErrNotFound       = errors.New("student not found")
	ErrEmailExists    = errors.New("a student with this email already exists")
	ErrUsernameExists = errors.New("a student with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(username, email string, excluded ...Student) error
		CreateStudent(stu Student) (Student, error)
		QueryAllStudents() ([]Student, error)
		GetStudentByID(id string) (Student, error)
		GetStudentByUsernameOrEmail(username string) (Student, error)
		UpdateStudent(stu Student, isActive *bool) (Student, error)
		SetLastLogin(stu Student) (Student, error)
	}

	Service interface {
		CheckUniqueness(uname, email string, excluded ...Student) error
		Create(ns NewStudent) (Student, error)
		QueryAll() ([]Student, error)
		GetByID(id string) (Student, error)
		GetByUsernameOrEmail(uname string) (Student, error)
		Update(id string, us UpdateStudent) (Student, error)
		SetLastLogin(stu Student) (Student, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(uname, email string, excluded ...Student) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, email, excluded...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	stu := Student{
		Name:      ns.Name,
		Username:  ns.Username,
		Email:     ns.Email,
		IsActive:  true,
		Roles:     ns.Roles,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(stu.Roles) == 0 {
		stu.Roles = []string{RoleStudent}
	}
	if err := stu.SetPassword(ns.Password); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(stu)
}

func (svc *service) QueryAll() ([]Student, error) {
	return svc.repo.QueryAllStudents()
}

func (svc *service) GetByID(id string) (Student, error) {
	return svc.repo.GetStudentByID(id)
}

func (svc *service) GetByUsernameOrEmail(uname string) (Student, error) {
	return svc.repo.GetStudentByUsernameOrEmail(core.CleanString(uname, true /* lower */))
}

func (svc *service) Update(id string, us UpdateStudent) (Student, error) {
	stu := Student{
		ID:        id,
		Name:      us.Name,
		Username:  us.Username,
		Email:     us.Email,
		Roles:     us.Roles,
		UpdatedAt: time.Now().UTC(),
	}
	if us.Password != "" {
		if err := stu.SetPassword(us.Password); err != nil {
			return Student{}, err
		}
	}
	return svc.repo.UpdateStudent(stu, us.IsActive)
}

func (svc *service) SetLastLogin(stu Student) (Student, error) {
	return svc.repo.SetLastLogin(stu)
}
