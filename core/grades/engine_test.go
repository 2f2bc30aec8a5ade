package grades_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/grades"
	"github.com/ferjoo/tutorias/storage/jsonfile"
	testutil "github.com/ferjoo/tutorias/tests"
)

const tareas = `<?xml version="1.0" encoding="UTF-8"?>
<curso codigo="mat101">Calculus</curso>
<notas>
	<actividad nombre="Tarea1" carnet="C001">90</actividad>
	<actividad nombre="Tarea2" carnet="C001">60</actividad>
</notas>`

func newEngine(t *testing.T, path string) *grades.Engine {
	t.Helper()
	logger := testutil.NewLogger(t)
	store, err := jsonfile.NewGradesFile(path, logger)
	require.NoError(t, err)
	engine, err := grades.NewEngine(store, logger)
	require.NoError(t, err)
	return engine
}

func mustIngest(t *testing.T, engine *grades.Engine, doc string, tutorID int) grades.UploadResult {
	t.Helper()
	res, err := engine.Ingest(strings.NewReader(doc), tutorID)
	require.NoError(t, err)
	return res
}

func TestEngine_IngestAndReport(t *testing.T) {
	engine := newEngine(t, filepath.Join(t.TempDir(), "grades.json"))

	res := mustIngest(t, engine, tareas, 7)
	assert.Equal(t, "MAT101", res.CourseCode)
	assert.Equal(t, "Calculus", res.CourseName)
	assert.Equal(t, 7, res.TutorID)
	assert.Equal(t, 2, res.TotalActivities)
	assert.Equal(t, 1, res.TotalStudents)
	assert.Equal(t, 2, res.TotalGrades)
	assert.Equal(t, 100.0, res.Density)
	assert.NotEmpty(t, res.UploadID)
	assert.False(t, res.UploadDate.IsZero())

	rep, err := engine.Report("MAT101", 7)
	require.NoError(t, err)
	assert.Equal(t, 75.0, rep.Average)
	assert.Equal(t, 90.0, rep.Max)
	assert.Equal(t, 60.0, rep.Min)
	assert.Equal(t, 100.0, rep.PassingRate)
	assert.Equal(t, 2, rep.TotalGrades)
	assert.Equal(t, map[string]float64{"C001": 75}, rep.StudentAverages)
	assert.Equal(t, map[string]float64{"Tarea1": 90, "Tarea2": 60}, rep.ActivityAverages)
	assert.Equal(t, grades.Distribution{A: 1, D: 1}, rep.Distribution)

	cg, err := engine.CourseGrades("mat101", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, cg.Matrix.Rows())
	assert.Equal(t, 1, cg.Matrix.Cols())
	assert.Equal(t, []string{"Tarea1", "Tarea2"}, cg.Info.Activities)
	grade, ok := cg.Grade("Tarea2", "C001")
	assert.True(t, ok)
	assert.Equal(t, 60.0, grade)
	_, ok = cg.Grade("Tarea3", "C001")
	assert.False(t, ok)
}

func TestEngine_ZeroGrades(t *testing.T) {
	engine := newEngine(t, filepath.Join(t.TempDir(), "grades.json"))
	res := mustIngest(t, engine, `<curso codigo="FIS100">Physics</curso>
		<notas><actividad nombre="Quiz" carnet="C002">0</actividad></notas>`, 3)
	assert.Equal(t, 0, res.TotalGrades)
	assert.Equal(t, 1, res.TotalActivities)
	assert.Equal(t, 1, res.TotalStudents)

	rep, err := engine.Report("FIS100", 3)
	require.NoError(t, err)
	assert.Zero(t, rep.Average)
	assert.Zero(t, rep.Max)
	assert.Zero(t, rep.Min)
	assert.Zero(t, rep.PassingRate)
	assert.Zero(t, rep.TotalGrades)
	assert.NotNil(t, rep.StudentAverages)
	assert.Empty(t, rep.StudentAverages)
	assert.Empty(t, rep.ActivityAverages)
	assert.Equal(t, grades.Distribution{}, rep.Distribution)
}

func TestEngine_Report(t *testing.T) {
	engine := newEngine(t, filepath.Join(t.TempDir(), "grades.json"))
	mustIngest(t, engine, `<curso codigo="QUI200">Chemistry</curso>
		<notas>
			<actividad nombre="Lab1" carnet="C001">95</actividad>
			<actividad nombre="Lab1" carnet="C002">85</actividad>
			<actividad nombre="Lab1" carnet="C003">55.5</actividad>
			<actividad nombre="Lab2" carnet="C001">72</actividad>
			<actividad nombre="Lab2" carnet="C001">75</actividad>
			<actividad nombre="Lab2" carnet="C003">0</actividad>
		</notas>`, 1)

	rep, err := engine.Report("QUI200", 1)
	require.NoError(t, err)
	// the repeated Lab2/C001 grade keeps the last value; the 0 is not recorded
	assert.Equal(t, 4, rep.TotalGrades)
	assert.Equal(t, 77.63, rep.Average)
	assert.Equal(t, 95.0, rep.Max)
	assert.Equal(t, 55.5, rep.Min)
	assert.Equal(t, 75.0, rep.PassingRate)
	assert.Equal(t, map[string]float64{"C001": 85, "C002": 85, "C003": 55.5}, rep.StudentAverages)
	assert.Equal(t, map[string]float64{"Lab1": 78.5, "Lab2": 75}, rep.ActivityAverages)
	assert.Equal(t, grades.Distribution{A: 1, B: 1, C: 1, F: 1}, rep.Distribution)
	assert.Equal(t, 66.67, rep.Density)

	_, err = engine.Report("QUI200", 2)
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = engine.Report("NOPE", 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestEngine_IngestErrors(t *testing.T) {
	engine := newEngine(t, filepath.Join(t.TempDir(), "grades.json"))

	tests := []struct {
		name    string
		doc     string
		tutorID int
		parse   bool
		field   string
	}{
		{"malformed xml", `<curso codigo="A">x</curso><notas>`, 1, true, ""},
		{"missing curso", `<notas><actividad nombre="T" carnet="C">1</actividad></notas>`, 1, true, ""},
		{"missing notas", `<curso codigo="A">x</curso>`, 1, true, ""},
		{"missing code", `<curso>x</curso><notas/>`, 1, false, "codigo"},
		{"missing name", `<curso codigo="A"> </curso><notas/>`, 1, false, "curso"},
		{"missing activity", `<curso codigo="A">x</curso><notas><actividad carnet="C">1</actividad></notas>`, 1, false, "nombre"},
		{"missing student", `<curso codigo="A">x</curso><notas><actividad nombre="T">1</actividad></notas>`, 1, false, "carnet"},
		{"missing grade", `<curso codigo="A">x</curso><notas><actividad nombre="T" carnet="C"/></notas>`, 1, false, "actividad"},
		{"non numeric grade", `<curso codigo="A">x</curso><notas><actividad nombre="T" carnet="C">A+</actividad></notas>`, 1, false, "actividad"},
		{"grade above range", `<curso codigo="A">x</curso><notas><actividad nombre="T" carnet="C">100.5</actividad></notas>`, 1, false, "actividad"},
		{"negative grade", `<curso codigo="A">x</curso><notas><actividad nombre="T" carnet="C">-1</actividad></notas>`, 1, false, "actividad"},
		{"bad tutor", tareas, 0, false, "tutor_id"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.Ingest(strings.NewReader(tc.doc), tc.tutorID)
			require.Error(t, err)
			if tc.parse {
				assert.ErrorIs(t, err, core.ErrParse)
				return
			}
			var verr *core.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			_, ok := verr.Field(tc.field)
			assert.True(t, ok, "expected an error on %s, got %v", tc.field, verr)
		})
	}

	assert.Empty(t, engine.Courses())
}

func TestEngine_Reupload(t *testing.T) {
	engine := newEngine(t, filepath.Join(t.TempDir(), "grades.json"))
	first := mustIngest(t, engine, tareas, 7)
	second := mustIngest(t, engine, `<curso codigo="MAT101">Calculus I</curso>
		<notas><actividad nombre="Final" carnet="C009">40</actividad></notas>`, 7)
	assert.NotEqual(t, first.UploadID, second.UploadID)

	rep, err := engine.Report("MAT101", 7)
	require.NoError(t, err)
	assert.Equal(t, "Calculus I", rep.CourseName)
	assert.Equal(t, 40.0, rep.Average)
	assert.Zero(t, rep.PassingRate)
	assert.Equal(t, map[string]float64{"Final": 40}, rep.ActivityAverages)

	// another tutor's upload of the same course is kept apart
	mustIngest(t, engine, tareas, 8)
	courses := engine.Courses()
	require.Len(t, courses, 2)
	assert.Equal(t, 7, courses[0].TutorID)
	assert.Equal(t, 8, courses[1].TutorID)
	require.Len(t, engine.TutorCourses(8), 1)
	assert.Empty(t, engine.TutorCourses(9))

	stats := engine.Stats()
	assert.Equal(t, 2, stats.Courses)
	assert.Equal(t, 3, stats.TotalGrades)
	assert.Equal(t, 100.0, stats.AverageDensity)
}

func TestEngine_Delete(t *testing.T) {
	engine := newEngine(t, filepath.Join(t.TempDir(), "grades.json"))
	mustIngest(t, engine, tareas, 7)

	ok, err := engine.Delete("mat101", 7)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.Delete("MAT101", 7)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = engine.Report("MAT101", 7)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, engine.Courses())
}

func TestEngine_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grades.json")
	engine := newEngine(t, path)
	mustIngest(t, engine, tareas, 7)
	mustIngest(t, engine, `<curso codigo="FIS100">Physics</curso>
		<notas><actividad nombre="Quiz" carnet="C002">88</actividad></notas>`, 3)
	_, err := engine.Delete("FIS100", 3)
	require.NoError(t, err)
	want, err := engine.Report("MAT101", 7)
	require.NoError(t, err)

	reloaded := newEngine(t, path)
	got, err := reloaded.Report("MAT101", 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Len(t, reloaded.Courses(), 1)
	assert.Equal(t, engine.Courses(), reloaded.Courses())
}

// flakyStore keeps the state in memory and fails every Save while broken is set.
type flakyStore struct {
	broken bool
	saved  int
}

func (s *flakyStore) Load() (*grades.State, error) { return nil, nil }

func (s *flakyStore) Save(*grades.State) error {
	if s.broken {
		return errors.New("disk full")
	}
	s.saved++
	return nil
}

func TestEngine_SaveFailure(t *testing.T) {
	store := &flakyStore{}
	engine, err := grades.NewEngine(store, testutil.NewLogger(t))
	require.NoError(t, err)

	store.broken = true
	_, err = engine.Ingest(strings.NewReader(tareas), 7)
	require.Error(t, err)
	_, err = engine.Report("MAT101", 7)
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, engine.Courses())

	// a failed re-upload keeps the previous one
	store.broken = false
	first := mustIngest(t, engine, tareas, 7)
	store.broken = true
	_, err = engine.Ingest(strings.NewReader(`<curso codigo="MAT101">Calculus I</curso>
		<notas><actividad nombre="Final" carnet="C009">40</actividad></notas>`), 7)
	require.Error(t, err)
	rep, err := engine.Report("MAT101", 7)
	require.NoError(t, err)
	assert.Equal(t, "Calculus", rep.CourseName)
	assert.Equal(t, 2, rep.TotalGrades)

	// a failed delete keeps the upload
	ok, err := engine.Delete("MAT101", 7)
	require.Error(t, err)
	assert.False(t, ok)
	courses := engine.Courses()
	require.Len(t, courses, 1)
	assert.Equal(t, first.UploadID, courses[0].UploadID)
	assert.Equal(t, 1, store.saved)
}
