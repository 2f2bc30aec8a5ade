package main

import (
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) error {
	usr, err := cli.usrSvc.GetByUsername(uname)
	if errors.Is(err, core.ErrNotFound) {
		usr, err = cli.usrSvc.GetByEmail(email)
	}

	switch {
	case err == nil:
		uu := user.UpdateUser{
			Email:    null.StringFrom(email),
			Password: null.StringFrom(pwd),
			IsActive: null.BoolFrom(true),
		}
		if isAdmin {
			uu.IsAdmin = null.BoolFrom(true)
		}
		if _, err := cli.usrSvc.Update(usr.ID, uu); err != nil {
			return err
		}
	case errors.Is(err, core.ErrNotFound):
		nu := user.NewUser{
			Username: uname,
			Email:    email,
			Password: pwd,
			IsAdmin:  isAdmin,
		}
		if _, err := cli.usrSvc.Create(nu); err != nil {
			return err
		}
	default:
		return err
	}
	return cli.persist()
}
