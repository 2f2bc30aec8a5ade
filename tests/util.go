package testutil

import (
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
	"github.com/ferjoo/tutorias/core/student"
	"github.com/ferjoo/tutorias/core/user"
	"github.com/ferjoo/tutorias/storage/matrixdb"
)

// Logger sends every log line to t.Log and remembers the messages per level.
type Logger struct {
	t      *testing.T
	mutex  sync.Mutex
	logged map[string][]string
}

var _ core.Logger = (*Logger)(nil)

func NewLogger(t *testing.T) *Logger {
	return &Logger{t: t, logged: make(map[string][]string)}
}

func (l *Logger) log(level, msg string, args []interface{}) {
	l.t.Helper()
	l.mutex.Lock()
	l.logged[level] = append(l.logged[level], msg)
	l.mutex.Unlock()
	l.t.Log(append([]interface{}{level, msg}, args...)...)
}

// Logged returns the messages logged at level (DEBUG, INFO, WARN, ERROR, FATAL).
func (l *Logger) Logged(level string) []string {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return append([]string(nil), l.logged[level]...)
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("FATAL", msg, args)
	l.t.FailNow()
}

// Config returns a small configuration rooted in a temporary directory.
func Config(t *testing.T) *core.Config {
	return &core.Config{
		Env:           "TEST",
		TestMode:      true,
		AppName:       "Tutorias",
		WorkDir:       t.TempDir(),
		DataDir:       "data",
		GradesFile:    "grades_data.json",
		StateFile:     "store_state.json",
		TableCapacity: 100,
		IndexBuckets:  16,
		BcryptCost:    bcrypt.MinCost,
	}
}

func NewDB(t *testing.T, conf *core.Config) *matrixdb.DB {
	t.Helper()
	db, err := matrixdb.Open(conf)
	if err != nil {
		t.Fatalf("NewDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, svc *user.Service, uname, email, pwd string, isAdmin bool) user.User {
	t.Helper()
	usr, err := svc.Create(user.NewUser{
		Username:  uname,
		Email:     email,
		Password:  pwd,
		FirstName: uname,
		IsAdmin:   isAdmin,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateStudent(t *testing.T, svc *student.Service, carnet, name, pwd string) student.Student {
	t.Helper()
	stu, err := svc.Create(student.NewStudent{Carnet: carnet, Name: name, Password: pwd})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stu
}

func CreateCourse(t *testing.T, svc *course.Service, code, name string) course.Course {
	t.Helper()
	crs, err := svc.Create(course.NewCourse{Code: code, Name: name})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}
