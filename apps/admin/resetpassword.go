package main

import (
	"time"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	stu, err := cli.studentRepo.GetStudentByUsernameOrEmail(uname)
	if err != nil {
		return err
	}
	if err = stu.SetPassword(pwd); err != nil {
		return err
	}
	stu.UpdatedAt = time.Now().UTC()
	_, err = cli.studentRepo.UpdateStudent(stu, nil)
	return err
}
