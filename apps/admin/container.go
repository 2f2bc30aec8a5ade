package main

import (
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/assignment"
	"github.com/ferjoo/tutorias/core/bootstrap"
	"github.com/ferjoo/tutorias/core/course"
	"github.com/ferjoo/tutorias/core/grades"
	"github.com/ferjoo/tutorias/core/schedule"
	"github.com/ferjoo/tutorias/core/student"
	"github.com/ferjoo/tutorias/core/user"
	logsvc "github.com/ferjoo/tutorias/services/logger"
	"github.com/ferjoo/tutorias/storage/jsonfile"
	"github.com/ferjoo/tutorias/storage/matrixdb"
)

func newRollbarLogger(conf *core.Config) *logsvc.RollbarLogger {
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newLogger(l *logsvc.RollbarLogger) core.Logger {
	return l
}

func newStateFile(conf *core.Config, logger core.Logger) (*jsonfile.StateFile, error) {
	return jsonfile.NewStateFile(conf.StatePath(), logger)
}

func newGradesStore(conf *core.Config, logger core.Logger) (grades.Store, error) {
	return jsonfile.NewGradesFile(conf.GradesPath(), logger)
}

// newDB opens the tables and restores the last saved state into them.
func newDB(conf *core.Config, sf *jsonfile.StateFile) (*matrixdb.DB, error) {
	db, err := matrixdb.Open(conf)
	if err != nil {
		return nil, err
	}
	sf.LoadInto(db)
	return db, nil
}

func newCourseChecker(svc *course.Service) assignment.CourseChecker {
	return svc
}

// newContainer returns the dependency injection container of the admin CLI.
func newContainer() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newRollbarLogger))
	must(c.Provide(newLogger))
	must(c.Provide(newStateFile))
	must(c.Provide(newGradesStore))
	must(c.Provide(newDB))
	must(c.Provide(matrixdb.NewUserRepository))
	must(c.Provide(matrixdb.NewStudentRepository))
	must(c.Provide(matrixdb.NewCourseRepository))
	must(c.Provide(matrixdb.NewScheduleRepository))
	must(c.Provide(matrixdb.NewAssignmentRepository))
	must(c.Provide(user.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(course.NewService))
	must(c.Provide(newCourseChecker))
	must(c.Provide(schedule.NewService))
	must(c.Provide(assignment.NewService))
	must(c.Provide(grades.NewEngine))
	must(c.Provide(bootstrap.NewLoader))
	must(c.Provide(newCommandLine))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
