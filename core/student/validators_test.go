package student

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type svcStub struct {
	Service
	uniqErr error
}

func (s svcStub) CheckUniqueness(uname, email string, excluded ...Student) error {
	return s.uniqErr
}

func failedTags(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("error type = %T, want validator.ValidationErrors", err)
	}
	tags := make(map[string]string, len(vErrs))
	for _, vErr := range vErrs {
		tags[vErr.Field()] = vErr.Tag()
	}
	return tags
}

func TestNewStudent_Validate(t *testing.T) {
	svc := svcStub{}

	tests := []struct {
		name     string
		ns       NewStudent
		wantTags map[string]string // field -> tag
	}{
		{
			name: "valid",
			ns:   NewStudent{Name: "Amani M", Username: "amani", Email: "amani@test.cd", Password: "s3cure pass is long"},
		},
		{
			name:     "name required",
			ns:       NewStudent{Username: "amani", Password: "s3curepassword"},
			wantTags: map[string]string{"name": "required"},
		},
		{
			name:     "username or email required",
			ns:       NewStudent{Name: "Amani", Password: "s3curepassword"},
			wantTags: map[string]string{"username": "username_or_email", "email": "username_or_email"},
		},
		{
			name:     "bad username chars",
			ns:       NewStudent{Name: "Amani", Username: "am@ni!", Password: "s3curepassword"},
			wantTags: map[string]string{"username": "alphanum_"},
		},
		{
			name:     "bad email",
			ns:       NewStudent{Name: "Amani", Email: "nope", Password: "s3curepassword"},
			wantTags: map[string]string{"email": "email"},
		},
		{
			name:     "unknown role",
			ns:       NewStudent{Name: "Amani", Username: "amani", Password: "s3curepassword", Roles: []string{"superuser:"}},
			wantTags: map[string]string{"roles": "allroles"},
		},
		{
			name:     "password too short",
			ns:       NewStudent{Name: "Amani", Username: "amani", Password: "short"},
			wantTags: map[string]string{"password": "pwdminlen"},
		},
		{
			name:     "password all numeric",
			ns:       NewStudent{Name: "Amani", Username: "amani", Password: "123456789012"},
			wantTags: map[string]string{"password": "pwdnotallnum"},
		},
		{
			name:     "password similar to username",
			ns:       NewStudent{Name: "Amani", Username: "barakamwanzi", Password: "barakamwanz1"},
			wantTags: map[string]string{"password": "pwdtoosim"},
		},
		{
			name:     "password similar to email local part",
			ns:       NewStudent{Name: "Amani", Email: "barakamwanzi@test.cd", Password: "barakamwanz1"},
			wantTags: map[string]string{"password": "pwdtoosim"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(svc)
			if tt.wantTags == nil {
				if err != nil {
					t.Fatalf("Validate() unexpected error = %v", err)
				}
				return
			}
			got := failedTags(t, err)
			for field, tag := range tt.wantTags {
				if got[field] != tag {
					t.Errorf("Validate() tags = %v, want %s on %s", got, tag, field)
				}
			}
		})
	}
}

func TestNewStudent_Validate_passwordWithWhitespaceOnly(t *testing.T) {
	ns := NewStudent{Name: "Amani", Username: "amani", Password: "with space123"}
	got := failedTags(t, ns.Validate(svcStub{}))
	if got["password"] != "pwdnospace" {
		t.Errorf("Validate() tags = %v, want pwdnospace on password", got)
	}
}

func TestUpdateStudent_Validate(t *testing.T) {
	svc := svcStub{}
	target := Student{ID: "s1"}

	t.Run("empty update passes", func(t *testing.T) {
		us := UpdateStudent{}
		if err := us.Validate(svc, target); err != nil {
			t.Fatalf("Validate() unexpected error = %v", err)
		}
	})

	t.Run("password policy still applies", func(t *testing.T) {
		us := UpdateStudent{Password: "short"}
		got := failedTags(t, us.Validate(svc, target))
		if got["password"] != "pwdminlen" {
			t.Errorf("Validate() tags = %v, want pwdminlen on password", got)
		}
	})

	t.Run("cleans username and email", func(t *testing.T) {
		us := UpdateStudent{Username: "  AMANI ", Email: " Amani@Test.CD "}
		if err := us.Validate(svc, target); err != nil {
			t.Fatalf("Validate() unexpected error = %v", err)
		}
		if us.Username != "amani" || us.Email != "amani@test.cd" {
			t.Errorf("clean() = %q, %q", us.Username, us.Email)
		}
	})
}

func TestStudent_passwords(t *testing.T) {
	var stu Student
	if err := stu.SetPassword("s3curepassword"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if len(stu.PasswordHash) == 0 {
		t.Fatal("SetPassword() left an empty hash")
	}
	if err := stu.CheckPassword("s3curepassword"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if err := stu.CheckPassword("wrong"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}

func TestStudent_roles(t *testing.T) {
	stu := Student{Roles: []string{RoleTeacher}}
	if !stu.IsTeacher() || stu.IsAdmin() || stu.IsStudent() {
		t.Errorf("roles = %v; IsTeacher=%v IsAdmin=%v IsStudent=%v",
			stu.Roles, stu.IsTeacher(), stu.IsAdmin(), stu.IsStudent())
	}

	admin := Student{Roles: AllRoles}
	if !(admin.IsAdmin() && admin.IsTeacher() && admin.IsStudent()) {
		t.Errorf("AllRoles student should hold every portal role")
	}
}
