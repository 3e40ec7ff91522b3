package student

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// Roles
const (
	RoleAdmin   = "admin:"
	RoleTeacher = "teacher:"
	RoleStudent = "student:"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

	Roles = []Role{
		{Name: "Student", Value: RoleStudent},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Admin", Value: RoleAdmin},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Student is an account on the platform; teachers and admins are students with
// elevated roles.
type Student struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsActive     bool      `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (s *Student) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.PasswordHash = hash
	return nil
}

func (s *Student) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(pwd))
}

func (s *Student) RoleStartsWith(prefix string) bool {
	for _, role := range s.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (s *Student) IsAdmin() bool   { return s.RoleStartsWith(RoleAdmin) }
func (s *Student) IsTeacher() bool { return s.RoleStartsWith(RoleTeacher) }
func (s *Student) IsStudent() bool { return s.RoleStartsWith(RoleStudent) }

// EmailAddr returns the student's address in RFC 5322 form.
func (s *Student) EmailAddr() string {
	if s.Name == "" {
		return s.Email
	}
	return s.Name + " <" + s.Email + ">"
}

type NewStudent struct {
	Name     string   `json:"name" validate:"required"`
	Username string   `json:"username" validate:"omitempty,alphanum_"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Password string   `json:"password" validate:"required"`
	Roles    []string `json:"roles" validate:"omitempty,allroles"`
}

func (ns *NewStudent) clean() {
	ns.Name = core.CleanString(ns.Name)
	ns.Username = core.CleanString(ns.Username, true /* lower */)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
}

func (ns *NewStudent) Validate(svc Service) error {
	ns.clean()
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.Username, ns.Email)
}

type UpdateStudent struct {
	Name     string   `json:"name"`
	Username string   `json:"username" validate:"omitempty,alphanum_"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles" validate:"omitempty,allroles"`
	IsActive *bool    `json:"is_active"`
}

func (us *UpdateStudent) clean() {
	us.Name = core.CleanString(us.Name)
	us.Username = core.CleanString(us.Username, true /* lower */)
	us.Email = core.CleanString(us.Email, true /* lower */)
}

func (us *UpdateStudent) Validate(svc Service, target Student) error {
	us.clean()
	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	if us.Username != "" || us.Email != "" {
		return svc.CheckUniqueness(us.Username, us.Email, target)
	}
	return nil
}
