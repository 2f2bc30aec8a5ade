package main

import (
	"os"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core/grades"
	"github.com/ferjoo/tutorias/storage/matrixdb"
)

func (cli *commandLine) loadConfig(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := cli.loader.Load(f)
	if err != nil {
		return err
	}
	if err := cli.persist(); err != nil {
		return err
	}
	return res.WriteXML(cli.out)
}

// tutorID resolves a tutor given by username or email.
func (cli *commandLine) tutorID(uname string) (int, error) {
	usr, err := cli.usrSvc.GetByUsernameOrEmail(uname)
	if err != nil {
		return 0, errors.Wrapf(err, "tutor %q", uname)
	}
	return usr.ID, nil
}

func (cli *commandLine) uploadSchedule(path, tutor string) error {
	tutorID, err := cli.tutorID(tutor)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	summary, err := cli.schedSvc.Upload(f, tutorID)
	if summary.CreatedSchedules > 0 {
		// keep what was created even when the upload stopped halfway
		if perr := cli.persist(); perr != nil && err == nil {
			err = perr
		}
	}
	if err != nil {
		return err
	}
	return cli.printJSON(summary)
}

func (cli *commandLine) uploadGrades(path, tutor string) error {
	tutorID, err := cli.tutorID(tutor)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res, err := cli.grades.Ingest(f, tutorID)
	if err != nil {
		return err
	}
	return cli.printJSON(res)
}

func (cli *commandLine) report(code, tutor string) error {
	tutorID, err := cli.tutorID(tutor)
	if err != nil {
		return err
	}
	rep, err := cli.grades.Report(code, tutorID)
	if err != nil {
		return err
	}
	return cli.printJSON(rep)
}

func (cli *commandLine) stats() error {
	return cli.printJSON(struct {
		Tables []matrixdb.TableStats `json:"tables"`
		Grades grades.Stats          `json:"grades"`
	}{
		Tables: cli.db.Stats(),
		Grades: cli.grades.Stats(),
	})
}
