package main

import (
	"github.com/volatiletech/null/v8"

	"github.com/ferjoo/tutorias/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	usr, err := cli.usrSvc.GetByUsernameOrEmail(uname)
	if err != nil {
		return err
	}
	if _, err := cli.usrSvc.Update(usr.ID, user.UpdateUser{Password: null.StringFrom(pwd)}); err != nil {
		return err
	}
	return cli.persist()
}
