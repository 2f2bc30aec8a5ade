package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/dig"
	"golang.org/x/term"

	"github.com/ferjoo/tutorias/core/assignment"
	"github.com/ferjoo/tutorias/core/bootstrap"
	"github.com/ferjoo/tutorias/core/course"
	"github.com/ferjoo/tutorias/core/grades"
	"github.com/ferjoo/tutorias/core/schedule"
	"github.com/ferjoo/tutorias/core/student"
	"github.com/ferjoo/tutorias/core/user"
	"github.com/ferjoo/tutorias/storage/jsonfile"
	"github.com/ferjoo/tutorias/storage/matrixdb"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	out       io.Writer
	db        *matrixdb.DB
	stateFile *jsonfile.StateFile
	usrSvc    *user.Service
	stuSvc    *student.Service
	courseSvc *course.Service
	schedSvc  *schedule.Service
	assignSvc *assignment.Service
	grades    *grades.Engine
	loader    *bootstrap.Loader
}

type cliParams struct {
	dig.In

	DB        *matrixdb.DB
	StateFile *jsonfile.StateFile
	Users     *user.Service
	Students  *student.Service
	Courses   *course.Service
	Schedules *schedule.Service
	Assign    *assignment.Service
	Grades    *grades.Engine
	Loader    *bootstrap.Loader
}

func newCommandLine(p cliParams) *commandLine {
	return &commandLine{
		out:       os.Stdout,
		db:        p.DB,
		stateFile: p.StateFile,
		usrSvc:    p.Users,
		stuSvc:    p.Students,
		courseSvc: p.Courses,
		schedSvc:  p.Schedules,
		assignSvc: p.Assign,
		grades:    p.Grades,
		loader:    p.Loader,
	}
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -username USERNAME -email EMAIL [-admin] - create a user (or reactivate it), the password is prompted")
	fmt.Println("  resetpassword -username USERNAME|EMAIL - reset user's password")
	fmt.Println("  loadconfig -file FILE - load courses, tutors, students and assignments from a <configuraciones> XML file")
	fmt.Println("  uploadschedule -file FILE -tutor USERNAME - create the schedules of a <horarios> XML file")
	fmt.Println("  uploadgrades -file FILE -tutor USERNAME - store the grades of a course")
	fmt.Println("  report -course CODE -tutor USERNAME - print the grades report of a course")
	fmt.Println("  stats - print the storage statistics")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserUname := addUserCmd.String("username", "", "The user's username. The password will be prompted next.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserAdmin := addUserCmd.Bool("admin", false, "Grant admin rights.")

	resetPasswordCmd := flag.NewFlagSet("resetpassword", flag.ExitOnError)
	resetPasswordUname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")

	loadConfigCmd := flag.NewFlagSet("loadconfig", flag.ExitOnError)
	loadConfigFile := loadConfigCmd.String("file", "", "The configuration XML file.")

	uploadScheduleCmd := flag.NewFlagSet("uploadschedule", flag.ExitOnError)
	uploadScheduleFile := uploadScheduleCmd.String("file", "", "The schedules XML file.")
	uploadScheduleTutor := uploadScheduleCmd.String("tutor", "", "The tutor's username or email.")

	uploadGradesCmd := flag.NewFlagSet("uploadgrades", flag.ExitOnError)
	uploadGradesFile := uploadGradesCmd.String("file", "", "The grades XML file.")
	uploadGradesTutor := uploadGradesCmd.String("tutor", "", "The tutor's username or email.")

	reportCmd := flag.NewFlagSet("report", flag.ExitOnError)
	reportCourse := reportCmd.String("course", "", "The course code.")
	reportTutor := reportCmd.String("tutor", "", "The tutor's username or email.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserUname == "" || *addUserEmail == "" {
			addUserCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserUname, *addUserEmail, pwd, *addUserAdmin)

	case "resetpassword":
		if err := resetPasswordCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *resetPasswordUname == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			resetPasswordCmd.Usage()
			return errHelp
		}
		return cli.resetPassword(*resetPasswordUname, pwd)

	case "loadconfig":
		if err := loadConfigCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loadConfigFile == "" {
			loadConfigCmd.Usage()
			return errHelp
		}
		return cli.loadConfig(*loadConfigFile)

	case "uploadschedule":
		if err := uploadScheduleCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *uploadScheduleFile == "" || *uploadScheduleTutor == "" {
			uploadScheduleCmd.Usage()
			return errHelp
		}
		return cli.uploadSchedule(*uploadScheduleFile, *uploadScheduleTutor)

	case "uploadgrades":
		if err := uploadGradesCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *uploadGradesFile == "" || *uploadGradesTutor == "" {
			uploadGradesCmd.Usage()
			return errHelp
		}
		return cli.uploadGrades(*uploadGradesFile, *uploadGradesTutor)

	case "report":
		if err := reportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *reportCourse == "" || *reportTutor == "" {
			reportCmd.Usage()
			return errHelp
		}
		return cli.report(*reportCourse, *reportTutor)

	case "stats":
		return cli.stats()

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}

// persist saves the entity tables; the grades engine persists on its own.
func (cli *commandLine) persist() error {
	return errors.Wrap(cli.stateFile.Save(cli.db.Snapshot()), "saving state")
}

func (cli *commandLine) printJSON(v interface{}) error {
	enc := json.NewEncoder(cli.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
