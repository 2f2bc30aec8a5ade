// Package grades ingests per-course grade uploads into activity×student sparse matrices and reports on them.
package grades

import (
	"sort"
	"strconv"
	"time"

	"github.com/ferjoo/tutorias/core/sparse"
)

// CourseInfo is the metadata of one uploaded grade matrix.
type CourseInfo struct {
	CourseCode      string    `json:"course_code"`
	CourseName      string    `json:"course_name"`
	TutorID         int       `json:"tutor_id"`
	Activities      []string  `json:"activities"` // matrix rows
	Students        []string  `json:"students"`   // matrix columns
	UploadID        string    `json:"upload_id"`
	UploadDate      time.Time `json:"upload_date"`
	TotalActivities int       `json:"total_activities"`
	TotalStudents   int       `json:"total_students"`
}

// State holds every uploaded course, keyed by Key(course, tutor).
type State struct {
	Courses     map[string]CourseInfo
	Matrices    map[string]*sparse.Matrix
	CreatedAt   time.Time
	LastUpdated time.Time
}

func NewState() *State {
	now := time.Now().UTC()
	return &State{
		Courses:     make(map[string]CourseInfo),
		Matrices:    make(map[string]*sparse.Matrix),
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// Key identifies the upload of a course by a tutor.
func Key(courseCode string, tutorID int) string {
	return courseCode + "_" + strconv.Itoa(tutorID)
}

func (s *State) keys() []string {
	keys := make([]string, 0, len(s.Courses))
	for key := range s.Courses {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Store persists the engine state.
type Store interface {
	Load() (*State, error)
	Save(state *State) error
}

type UploadResult struct {
	CourseCode      string    `json:"course_code"`
	CourseName      string    `json:"course_name"`
	TutorID         int       `json:"tutor_id"`
	TotalActivities int       `json:"total_activities"`
	TotalStudents   int       `json:"total_students"`
	TotalGrades     int       `json:"total_grades"`
	Density         float64   `json:"density"`
	UploadID        string    `json:"upload_id"`
	UploadDate      time.Time `json:"upload_date"`
}

// Distribution counts grades per letter: A >= 90, B >= 80, C >= 70, D >= 60, F below.
type Distribution struct {
	A int `json:"A"`
	B int `json:"B"`
	C int `json:"C"`
	D int `json:"D"`
	F int `json:"F"`
}

func (d *Distribution) add(grade float64) {
	switch {
	case grade >= 90:
		d.A++
	case grade >= 80:
		d.B++
	case grade >= 70:
		d.C++
	case grade >= 60:
		d.D++
	default:
		d.F++
	}
}

type Report struct {
	CourseCode       string             `json:"course_code"`
	CourseName       string             `json:"course_name"`
	TutorID          int                `json:"tutor_id"`
	TotalActivities  int                `json:"total_activities"`
	TotalStudents    int                `json:"total_students"`
	TotalGrades      int                `json:"total_grades"`
	Average          float64            `json:"average"`
	Max              float64            `json:"max"`
	Min              float64            `json:"min"`
	PassingRate      float64            `json:"passing_rate"` // % of grades >= PassingGrade
	StudentAverages  map[string]float64 `json:"student_averages"`
	ActivityAverages map[string]float64 `json:"activity_averages"`
	Distribution     Distribution       `json:"distribution"`
	Density          float64            `json:"density"`
}

// CourseGrades is a copy of an uploaded course matrix with its metadata.
type CourseGrades struct {
	Info   CourseInfo
	Matrix *sparse.Matrix
}

// Grade returns the grade of student for activity, if one was recorded.
func (cg CourseGrades) Grade(activity, student string) (float64, bool) {
	r, c := indexOf(cg.Info.Activities, activity), indexOf(cg.Info.Students, student)
	if r < 0 || c < 0 {
		return 0, false
	}
	v := cg.Matrix.At(r, c)
	if v.IsZero() {
		return 0, false
	}
	return v.AsFloat(), true
}

type Stats struct {
	Courses        int       `json:"courses"`
	TotalGrades    int       `json:"total_grades"`
	AverageDensity float64   `json:"average_density"`
	CreatedAt      time.Time `json:"created_at"`
	LastUpdated    time.Time `json:"last_updated"`
}

func indexOf(list []string, s string) int {
	for i, item := range list {
		if item == s {
			return i
		}
	}
	return -1
}
