package assignment

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
)

var errUnknownCourse = errors.New("course does not exist")

type (
	Repository interface {
		CreateTutorCourse(a TutorCourse) (TutorCourse, error)
		QueryAllTutorCourses() ([]TutorCourse, error)
		GetTutorCourseByID(id int) (TutorCourse, error)
		GetTutorCourse(tutorID int, code string) (TutorCourse, error)
		GetTutorCoursesByTutor(tutorID int) ([]TutorCourse, error)
		GetTutorCoursesByCourse(code string) ([]TutorCourse, error)
		UpdateTutorCourse(a TutorCourse) (TutorCourse, error)
		DeleteTutorCourse(id int) (bool, error)
		TutorCourseStats() core.StoreStats

		CreateStudentCourse(a StudentCourse) (StudentCourse, error)
		QueryAllStudentCourses() ([]StudentCourse, error)
		GetStudentCourseByID(id int) (StudentCourse, error)
		GetStudentCourse(studentID int, code string) (StudentCourse, error)
		GetStudentCoursesByStudent(studentID int) ([]StudentCourse, error)
		GetStudentCoursesByCourse(code string) ([]StudentCourse, error)
		UpdateStudentCourse(a StudentCourse) (StudentCourse, error)
		DeleteStudentCourse(id int) (bool, error)
		StudentCourseStats() core.StoreStats
	}

	// CourseChecker tells whether a course code belongs to a live course.
	CourseChecker interface {
		Exists(code string) (bool, error)
	}

	Service struct {
		repo    Repository
		courses CourseChecker
	}
)

var _ CourseChecker = (*course.Service)(nil)

func NewService(repo Repository, courses CourseChecker) *Service {
	return &Service{repo: repo, courses: courses}
}

func (svc *Service) checkCourse(code string) error {
	ok, err := svc.courses.Exists(code)
	if err != nil {
		return err
	}
	if !ok {
		return core.NewValidationError(errUnknownCourse, core.FieldError{Field: "course_code", Error: errUnknownCourse.Error()})
	}
	return nil
}

// AssignTutor assigns tutorID to an existing course.
func (svc *Service) AssignTutor(na NewTutorCourse) (TutorCourse, error) {
	if err := na.Validate(); err != nil {
		return TutorCourse{}, err
	}
	if err := svc.checkCourse(na.CourseCode); err != nil {
		return TutorCourse{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateTutorCourse(TutorCourse{
		TutorID:    na.TutorID,
		CourseCode: na.CourseCode,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

// EnrollStudent assigns studentID to an existing course.
func (svc *Service) EnrollStudent(na NewStudentCourse) (StudentCourse, error) {
	if err := na.Validate(); err != nil {
		return StudentCourse{}, err
	}
	if err := svc.checkCourse(na.CourseCode); err != nil {
		return StudentCourse{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateStudentCourse(StudentCourse{
		StudentID:  na.StudentID,
		CourseCode: na.CourseCode,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
}

func (svc *Service) GetTutorCourse(id int) (TutorCourse, error) {
	return svc.repo.GetTutorCourseByID(id)
}

func (svc *Service) GetStudentCourse(id int) (StudentCourse, error) {
	return svc.repo.GetStudentCourseByID(id)
}

func (svc *Service) TutorCourses() ([]TutorCourse, error) {
	return svc.repo.QueryAllTutorCourses()
}

func (svc *Service) StudentCourses() ([]StudentCourse, error) {
	return svc.repo.QueryAllStudentCourses()
}

// TutorAssignments lists the courses assigned to tutorID.
func (svc *Service) TutorAssignments(tutorID int) ([]TutorCourse, error) {
	return svc.repo.GetTutorCoursesByTutor(tutorID)
}

// StudentAssignments lists the courses studentID is enrolled in.
func (svc *Service) StudentAssignments(studentID int) ([]StudentCourse, error) {
	return svc.repo.GetStudentCoursesByStudent(studentID)
}

// CourseAssignments lists tutors and students of a live course.
// A deleted course has no assignments, even though its assignment records are kept.
func (svc *Service) CourseAssignments(code string) (CourseAssignments, error) {
	code = course.CleanCode(code)
	out := CourseAssignments{CourseCode: code, Tutors: []TutorCourse{}, Students: []StudentCourse{}}
	ok, err := svc.courses.Exists(code)
	if err != nil || !ok {
		return out, err
	}
	if out.Tutors, err = svc.repo.GetTutorCoursesByCourse(code); err != nil {
		return out, err
	}
	if out.Students, err = svc.repo.GetStudentCoursesByCourse(code); err != nil {
		return out, err
	}
	return out, nil
}

// SetTutorCourseActive toggles an assignment without removing it.
func (svc *Service) SetTutorCourseActive(id int, active bool) (TutorCourse, error) {
	a, err := svc.repo.GetTutorCourseByID(id)
	if err != nil {
		return TutorCourse{}, err
	}
	a.IsActive = active
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTutorCourse(a)
}

func (svc *Service) SetStudentCourseActive(id int, active bool) (StudentCourse, error) {
	a, err := svc.repo.GetStudentCourseByID(id)
	if err != nil {
		return StudentCourse{}, err
	}
	a.IsActive = active
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudentCourse(a)
}

// UnassignTutor reports false when tutorID was not assigned to code.
func (svc *Service) UnassignTutor(tutorID int, code string) (bool, error) {
	a, err := svc.repo.GetTutorCourse(tutorID, course.CleanCode(code))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return svc.repo.DeleteTutorCourse(a.ID)
}

func (svc *Service) UnenrollStudent(studentID int, code string) (bool, error) {
	a, err := svc.repo.GetStudentCourse(studentID, course.CleanCode(code))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return svc.repo.DeleteStudentCourse(a.ID)
}

func (svc *Service) Stats() []core.StoreStats {
	return []core.StoreStats{svc.repo.TutorCourseStats(), svc.repo.StudentCourseStats()}
}
