package grades

import (
	"io"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
	"github.com/ferjoo/tutorias/core/sparse"
)

// Engine owns the grades state; every mutation is persisted through its Store.
type Engine struct {
	mutex sync.Mutex
	store Store
	log   core.Logger
	state *State
}

// NewEngine loads the persisted state from store.
func NewEngine(store Store, logger core.Logger) (*Engine, error) {
	state, err := store.Load()
	if err != nil {
		return nil, errors.Wrap(err, "grades: loading state")
	}
	if state == nil {
		state = NewState()
	}
	return &Engine{store: store, log: logger, state: state}, nil
}

func (e *Engine) save() error {
	if err := e.store.Save(e.state); err != nil {
		e.log.Error("grades: saving state", err)
		return errors.Wrap(err, "grades: saving state")
	}
	return nil
}

// Ingest parses a grade document uploaded by tutorID and stores it as an activity×student matrix,
// replacing any previous upload of the same course by the same tutor.
// Grades equal to 0 are accepted but not stored; a repeated (activity, student) pair keeps the last grade.
// When the state cannot be saved the previous upload, if any, stays in place.
func (e *Engine) Ingest(r io.Reader, tutorID int) (UploadResult, error) {
	if tutorID <= 0 {
		return UploadResult{}, invalid("tutor_id", "tutor id must be positive, got %d", tutorID)
	}
	up, err := parseUpload(r)
	if err != nil {
		return UploadResult{}, err
	}

	matrix, err := sparse.New(len(up.activities), len(up.students))
	if err != nil {
		return UploadResult{}, err
	}
	for _, g := range up.entries {
		if err := matrix.Set(g.activity, g.student, sparse.Float(g.value)); err != nil {
			return UploadResult{}, err
		}
	}

	info := CourseInfo{
		CourseCode:      up.code,
		CourseName:      up.name,
		TutorID:         tutorID,
		Activities:      up.activities,
		Students:        up.students,
		UploadID:        uuid.NewString(),
		UploadDate:      time.Now().UTC(),
		TotalActivities: len(up.activities),
		TotalStudents:   len(up.students),
	}

	e.mutex.Lock()
	defer e.mutex.Unlock()

	key := Key(info.CourseCode, tutorID)
	undo := e.keep(key)
	e.state.Courses[key] = info
	e.state.Matrices[key] = matrix
	if err := e.save(); err != nil {
		undo()
		return UploadResult{}, err
	}
	e.log.Info("grades: upload stored", map[string]interface{}{
		"key": key, "upload_id": info.UploadID, "grades": matrix.Len(),
	})

	return UploadResult{
		CourseCode:      info.CourseCode,
		CourseName:      info.CourseName,
		TutorID:         tutorID,
		TotalActivities: info.TotalActivities,
		TotalStudents:   info.TotalStudents,
		TotalGrades:     matrix.Len(),
		Density:         round2(matrix.Density()),
		UploadID:        info.UploadID,
		UploadDate:      info.UploadDate,
	}, nil
}

// keep records the entry stored under key and returns a func putting it back.
// The caller must hold the mutex.
func (e *Engine) keep(key string) (undo func()) {
	info, hasInfo := e.state.Courses[key]
	matrix, hasMatrix := e.state.Matrices[key]
	lastUpdated := e.state.LastUpdated
	return func() {
		delete(e.state.Courses, key)
		delete(e.state.Matrices, key)
		if hasInfo {
			e.state.Courses[key] = info
		}
		if hasMatrix {
			e.state.Matrices[key] = matrix
		}
		e.state.LastUpdated = lastUpdated
	}
}

func (e *Engine) get(code string, tutorID int) (CourseInfo, *sparse.Matrix, error) {
	key := Key(course.CleanCode(code), tutorID)
	info, ok := e.state.Courses[key]
	matrix := e.state.Matrices[key]
	if !ok || matrix == nil {
		return CourseInfo{}, nil, errors.Wrapf(core.ErrNotFound, "grades for %s", key)
	}
	return info, matrix, nil
}

// Report computes the statistics of the grades uploaded by tutorID for a course.
// Only recorded (non-zero) grades are taken into account.
func (e *Engine) Report(code string, tutorID int) (Report, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	info, matrix, err := e.get(code, tutorID)
	if err != nil {
		return Report{}, err
	}

	rep := Report{
		CourseCode:       info.CourseCode,
		CourseName:       info.CourseName,
		TutorID:          info.TutorID,
		TotalActivities:  info.TotalActivities,
		TotalStudents:    info.TotalStudents,
		StudentAverages:  make(map[string]float64),
		ActivityAverages: make(map[string]float64),
		Density:          round2(matrix.Density()),
	}
	entries := matrix.Entries()
	if len(entries) == 0 {
		return rep, nil
	}

	var sum float64
	var passing int
	rep.Max, rep.Min = math.Inf(-1), math.Inf(1)
	actSum := make([]float64, len(info.Activities))
	actCount := make([]int, len(info.Activities))
	stuSum := make([]float64, len(info.Students))
	stuCount := make([]int, len(info.Students))
	for _, entry := range entries {
		g := entry.Value.AsFloat()
		sum += g
		rep.Max = math.Max(rep.Max, g)
		rep.Min = math.Min(rep.Min, g)
		if g >= PassingGrade {
			passing++
		}
		rep.Distribution.add(g)
		actSum[entry.Row] += g
		actCount[entry.Row]++
		stuSum[entry.Col] += g
		stuCount[entry.Col]++
	}

	n := float64(len(entries))
	rep.TotalGrades = len(entries)
	rep.Average = round2(sum / n)
	rep.PassingRate = round2(float64(passing) / n * 100)
	for r, name := range info.Activities {
		if actCount[r] > 0 {
			rep.ActivityAverages[name] = round2(actSum[r] / float64(actCount[r]))
		}
	}
	for c, carnet := range info.Students {
		if stuCount[c] > 0 {
			rep.StudentAverages[carnet] = round2(stuSum[c] / float64(stuCount[c]))
		}
	}
	return rep, nil
}

// Delete removes an upload. It reports false when there was nothing to remove.
// When the state cannot be saved the upload is kept.
func (e *Engine) Delete(code string, tutorID int) (bool, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	key := Key(course.CleanCode(code), tutorID)
	_, hasInfo := e.state.Courses[key]
	_, hasMatrix := e.state.Matrices[key]
	if !hasInfo && !hasMatrix {
		return false, nil
	}
	undo := e.keep(key)
	delete(e.state.Courses, key)
	delete(e.state.Matrices, key)
	if err := e.save(); err != nil {
		undo()
		return false, err
	}
	return true, nil
}

// CourseGrades returns a copy of an uploaded matrix and its metadata.
func (e *Engine) CourseGrades(code string, tutorID int) (CourseGrades, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	info, matrix, err := e.get(code, tutorID)
	if err != nil {
		return CourseGrades{}, err
	}
	info.Activities = append([]string(nil), info.Activities...)
	info.Students = append([]string(nil), info.Students...)
	return CourseGrades{Info: info, Matrix: matrix.Clone()}, nil
}

// Courses lists every upload ordered by key.
func (e *Engine) Courses() []CourseInfo {
	return e.filter(func(CourseInfo) bool { return true })
}

// TutorCourses lists the uploads of tutorID.
func (e *Engine) TutorCourses(tutorID int) []CourseInfo {
	return e.filter(func(info CourseInfo) bool { return info.TutorID == tutorID })
}

func (e *Engine) filter(pred func(CourseInfo) bool) []CourseInfo {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	out := make([]CourseInfo, 0, len(e.state.Courses))
	for _, key := range e.state.keys() {
		if info := e.state.Courses[key]; pred(info) {
			out = append(out, info)
		}
	}
	return out
}

func (e *Engine) Stats() Stats {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	stats := Stats{
		Courses:     len(e.state.Courses),
		CreatedAt:   e.state.CreatedAt,
		LastUpdated: e.state.LastUpdated,
	}
	var density float64
	for _, m := range e.state.Matrices {
		stats.TotalGrades += m.Len()
		density += m.Density()
	}
	if n := len(e.state.Matrices); n > 0 {
		stats.AverageDensity = round2(density / float64(n))
	}
	return stats
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
