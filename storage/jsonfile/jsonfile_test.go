package jsonfile_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferjoo/tutorias/core/grades"
	"github.com/ferjoo/tutorias/core/sparse"
	"github.com/ferjoo/tutorias/core/student"
	"github.com/ferjoo/tutorias/storage/jsonfile"
	"github.com/ferjoo/tutorias/storage/matrixdb"
	testutil "github.com/ferjoo/tutorias/tests"
)

func newGradesFile(t *testing.T, path string) (*jsonfile.GradesFile, *testutil.Logger) {
	t.Helper()
	logger := testutil.NewLogger(t)
	gf, err := jsonfile.NewGradesFile(path, logger)
	require.NoError(t, err)
	return gf, logger
}

func sampleState(t *testing.T) *grades.State {
	t.Helper()
	m := sparse.MustNew(2, 3)
	require.NoError(t, m.Set(0, 0, sparse.Float(90)))
	require.NoError(t, m.Set(1, 2, sparse.Float(61.5)))

	state := grades.NewState()
	key := grades.Key("MAT101", 7)
	state.Courses[key] = grades.CourseInfo{
		CourseCode:      "MAT101",
		CourseName:      "Calculus",
		TutorID:         7,
		Activities:      []string{"Tarea1", "Tarea2"},
		Students:        []string{"C001", "C002", "C003"},
		UploadID:        "4f1c7a0e-1d8e-4e43-9a0b-2a5f0c3b6d11",
		UploadDate:      time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		TotalActivities: 2,
		TotalStudents:   3,
	}
	state.Matrices[key] = m
	return state
}

func TestNewGradesFile_BadArgs(t *testing.T) {
	_, err := jsonfile.NewGradesFile("", testutil.NewLogger(t))
	assert.Error(t, err)
	_, err = jsonfile.NewGradesFile("grades.json", nil)
	assert.Error(t, err)
}

func TestGradesFile_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "grades_data.json")
	gf, logger := newGradesFile(t, path)

	state := sampleState(t)
	before := state.LastUpdated
	require.NoError(t, gf.Save(state))
	assert.False(t, state.LastUpdated.Before(before))

	t.Run("layout", func(t *testing.T) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var doc map[string]map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &doc))
		assert.Contains(t, doc, "courses")
		assert.Contains(t, doc["metadata"], "created_at")
		assert.Contains(t, doc["metadata"], "last_updated")

		mat, ok := doc["sparse_matrices"]["MAT101_7"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{"0,0": 90.0, "1,2": 61.5}, mat["matrix_data"])
		assert.Equal(t, 2.0, mat["rows"])
		assert.Equal(t, 3.0, mat["cols"])
		assert.InDelta(t, 2.0/6*100, mat["density"], 1e-9)

		// no temp file left behind
		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	loaded, err := gf.Load()
	require.NoError(t, err)
	assert.Equal(t, state.Courses, loaded.Courses)
	require.Contains(t, loaded.Matrices, "MAT101_7")
	assert.True(t, state.Matrices["MAT101_7"].Equal(loaded.Matrices["MAT101_7"]))
	assert.True(t, state.CreatedAt.Equal(loaded.CreatedAt))
	assert.True(t, state.LastUpdated.Equal(loaded.LastUpdated))
	assert.Empty(t, logger.Logged("WARN"))
}

func TestGradesFile_Load(t *testing.T) {
	oneByOne := `{"course_code": "A", "tutor_id": 1, "activities": ["T"], "students": ["C"]}`
	tests := []struct {
		name    string
		content string // written unless empty
		warns   bool
	}{
		{"missing file", "", false},
		{"bad json", `{"courses": [`, true},
		{"bad cell key", `{"courses": {"A_1": ` + oneByOne + `}, "sparse_matrices": {"A_1": {"matrix_data": {"x": 1}, "rows": 1, "cols": 1}}}`, true},
		{"cell out of range", `{"courses": {"A_1": ` + oneByOne + `}, "sparse_matrices": {"A_1": {"matrix_data": {"3,0": 1}, "rows": 1, "cols": 1}}}`, true},
		{"shape differs from course", `{"courses": {"A_1": ` + oneByOne + `}, "sparse_matrices": {"A_1": {"matrix_data": {"3,0": 1}, "rows": 5, "cols": 1}}}`, true},
		{"matrix without course", `{"courses": {}, "sparse_matrices": {"A_1": {"matrix_data": {"0,0": 1}, "rows": 1, "cols": 1}}}`, true},
		{"course without matrix", `{"courses": {"A_1": ` + oneByOne + `}, "sparse_matrices": {}}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "grades.json")
			if tc.content != "" {
				require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))
			}
			gf, logger := newGradesFile(t, path)

			state, err := gf.Load()
			require.NoError(t, err)
			require.NotNil(t, state)
			assert.Empty(t, state.Courses)
			assert.Empty(t, state.Matrices)
			assert.Equal(t, tc.warns, len(logger.Logged("WARN")) > 0)
		})
	}
}

func TestStateFile(t *testing.T) {
	conf := testutil.Config(t)
	logger := testutil.NewLogger(t)
	sf, err := jsonfile.NewStateFile(conf.StatePath(), logger)
	require.NoError(t, err)

	db := testutil.NewDB(t, conf)
	students := student.NewService(matrixdb.NewStudentRepository(db), conf)
	ana := testutil.CreateStudent(t, students, "C001", "Ana", "s3cret")
	luis := testutil.CreateStudent(t, students, "C002", "Luis", "hunter22")
	_, err = students.Delete(luis.ID)
	require.NoError(t, err)

	// nothing saved yet
	_, ok := sf.Load()
	assert.False(t, ok)

	require.NoError(t, sf.Save(db.Snapshot()))

	restored := testutil.NewDB(t, conf)
	sf.LoadInto(restored)
	rstudents := student.NewService(matrixdb.NewStudentRepository(restored), conf)

	got, err := rstudents.GetByCarnet("C001")
	require.NoError(t, err)
	assert.Equal(t, ana.ID, got.ID)
	assert.Equal(t, ana.Name, got.Name)
	_, err = rstudents.Authenticate("C001", "s3cret")
	assert.NoError(t, err)
	_, err = rstudents.GetByCarnet("C002")
	assert.Error(t, err)

	// ids keep counting after the deleted record
	pedro := testutil.CreateStudent(t, rstudents, "C003", "Pedro", "qwerty")
	assert.Equal(t, 3, pedro.ID)

	t.Run("corrupt", func(t *testing.T) {
		require.NoError(t, os.WriteFile(conf.StatePath(), []byte("not json"), 0o644))
		_, ok := sf.Load()
		assert.False(t, ok)
		assert.NotEmpty(t, logger.Logged("WARN"))
	})
}
