package assignment

import (
	"time"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
)

// TutorCourse assigns a tutor (user) to a course.
type TutorCourse struct {
	ID         int       `json:"assignment_id"`
	TutorID    int       `json:"tutor_id"`
	CourseCode string    `json:"course_code"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// StudentCourse enrolls a student in a course.
type StudentCourse struct {
	ID         int       `json:"assignment_id"`
	StudentID  int       `json:"student_id"`
	CourseCode string    `json:"course_code"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

type NewTutorCourse struct {
	TutorID    int    `json:"tutor_id" validate:"required,gt=0"`
	CourseCode string `json:"course_code" validate:"required,alphanum_"`
}

func (na *NewTutorCourse) Validate() error {
	na.CourseCode = course.CleanCode(na.CourseCode)
	return core.ValidateStruct(na)
}

type NewStudentCourse struct {
	StudentID  int    `json:"student_id" validate:"required,gt=0"`
	CourseCode string `json:"course_code" validate:"required,alphanum_"`
}

func (na *NewStudentCourse) Validate() error {
	na.CourseCode = course.CleanCode(na.CourseCode)
	return core.ValidateStruct(na)
}

// CourseAssignments lists who is assigned to a course.
type CourseAssignments struct {
	CourseCode string          `json:"course_code"`
	Tutors     []TutorCourse   `json:"tutors"`
	Students   []StudentCourse `json:"students"`
}
