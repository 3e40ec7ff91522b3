package main

import (
	"time"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/student"
)

// addStudent updates or creates an account.
func (cli *commandLine) addStudent(name, uname, email, pwd string, isAdmin bool) error {
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	roles := []string{student.RoleStudent}
	if isAdmin {
		roles = student.AllRoles
	}

	stu, err := cli.studentRepo.GetStudentByUsernameOrEmail(uname)
	if err != nil {
		if err != student.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		stu = student.Student{
			Name:      name,
			Username:  uname,
			Email:     email,
			IsActive:  true,
			Roles:     roles,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = stu.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.studentRepo.CreateStudent(stu)
		return err
	}

	stu.Name = name
	stu.Roles = roles
	stu.UpdatedAt = time.Now().UTC()
	if err = stu.SetPassword(pwd); err != nil {
		return err
	}
	isActive := true
	_, err = cli.studentRepo.UpdateStudent(stu, &isActive)
	return err
}
