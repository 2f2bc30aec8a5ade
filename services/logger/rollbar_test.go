package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/student"
	"github.com/ferjoo/tutorias/core/user"
)

func TestRollbarLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Env: "TEST", TestMode: true, RollbarToken: "token"})

	usr := user.User{ID: 7, Username: "tutor01", Email: "t1@example.com"}
	l.Warn("upload rejected", errors.New("bad grade"), map[string]interface{}{"course": "MAT101"}, usr)

	out := buf.String()
	assert.Contains(t, out, "WARN upload rejected")
	assert.Contains(t, out, "bad grade")
	assert.Contains(t, out, "MAT101")
	assert.Contains(t, out, "tutor01")
}

func TestRollbarLogger_prepare(t *testing.T) {
	var l RollbarLogger
	err := errors.New("boom")

	args := l.prepare("msg", []interface{}{
		user.User{ID: 1, Username: "tutor01"},
		err,
		student.Student{ID: 2, Carnet: "C001"},
	})
	// people are reported as the rollbar person, not as extra data
	assert.Equal(t, []interface{}{"msg", err}, args)
}
