package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
)

// Schedule is a tutoring time slot of a course.
type Schedule struct {
	ID         int       `json:"schedule_id"`
	CourseCode string    `json:"codigo_curso"`
	Start      string    `json:"horario_inicio"` // HH:MM
	End        string    `json:"horario_fin"`    // HH:MM
	TutorID    int       `json:"tutor_id"`
	UploadDate time.Time `json:"upload_date"` // UTC
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type NewSchedule struct {
	CourseCode string `json:"codigo_curso" validate:"required,alphanum_"`
	Start      string `json:"horario_inicio" validate:"required,hhmm"`
	End        string `json:"horario_fin" validate:"required,hhmm"`
	TutorID    int    `json:"tutor_id" validate:"required,gt=0"`
}

func (ns *NewSchedule) Validate() error {
	ns.CourseCode = course.CleanCode(ns.CourseCode)
	ns.Start = core.CleanString(ns.Start)
	ns.End = core.CleanString(ns.End)
	if err := core.ValidateStruct(ns); err != nil {
		return err
	}
	return checkSlot(ns.Start, ns.End)
}

type UpdateSchedule struct {
	Start    null.String `json:"horario_inicio" validate:"omitempty,hhmm"`
	End      null.String `json:"horario_fin" validate:"omitempty,hhmm"`
	IsActive null.Bool   `json:"is_active"`
}

func (us *UpdateSchedule) Validate(orig Schedule) error {
	if err := core.ValidateStruct(us); err != nil {
		return err
	}
	start, end := orig.Start, orig.End
	if us.Start.Valid {
		start = us.Start.String
	}
	if us.End.Valid {
		end = us.End.String
	}
	return checkSlot(start, end)
}

func (us UpdateSchedule) apply(s *Schedule) {
	if us.Start.Valid {
		s.Start = us.Start.String
	}
	if us.End.Valid {
		s.End = us.End.String
	}
	if us.IsActive.Valid {
		s.IsActive = us.IsActive.Bool
	}
}

// checkSlot requires the slot to end after it starts.
func checkSlot(start, end string) error {
	if minutes(end) <= minutes(start) {
		msg := fmt.Sprintf("must be later than %s", start)
		return core.NewValidationError(nil, core.FieldError{Field: "horario_fin", Error: msg})
	}
	return nil
}

// minutes converts a validated HH:MM value into minutes since midnight.
func minutes(hhmm string) int {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	return h*60 + m
}
