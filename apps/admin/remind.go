package main

import "time"

// remind runs the reminder sweep once, outside the API scheduler.
func (cli *commandLine) remind() error {
	return cli.assignSvc.RunReminderSweep(time.Now().UTC())
}
