package course_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
	"github.com/ferjoo/tutorias/storage/matrixdb"
	testutil "github.com/ferjoo/tutorias/tests"
)

func newService(t *testing.T) *course.Service {
	t.Helper()
	return course.NewService(matrixdb.NewCourseRepository(testutil.NewDB(t, testutil.Config(t))))
}

func TestCleanCode(t *testing.T) {
	for in, want := range map[string]string{
		"mat101":    "MAT101",
		" Fis_100 ": "FIS_100",
		"":          "",
	} {
		assert.Equal(t, want, course.CleanCode(in), "CleanCode(%q)", in)
	}
}

func TestService(t *testing.T) {
	svc := newService(t)

	mat, err := svc.Create(course.NewCourse{Code: "mat101", Name: " Calculus "})
	require.NoError(t, err)
	assert.Equal(t, course.Course{ID: 1, Code: "MAT101", Name: "Calculus", IsActive: true, CreatedAt: mat.CreatedAt}, mat)

	_, err = svc.Create(course.NewCourse{Code: "MAT101", Name: "Again"})
	assert.ErrorIs(t, err, core.ErrDuplicateKey)
	_, err = svc.Create(course.NewCourse{Code: "MAT 101", Name: "Spaced"})
	assert.True(t, core.IsValidationError(err))
	_, err = svc.Create(course.NewCourse{Code: "QUI1"})
	assert.True(t, core.IsValidationError(err))

	fis := testutil.CreateCourse(t, svc, "FIS100", "Physics")
	assert.Equal(t, 2, fis.ID)

	got, err := svc.GetByCode("Mat101")
	require.NoError(t, err)
	assert.True(t, mat.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, mat.Name, got.Name)

	ok, err := svc.Exists("fis100")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Exists("QUI200")
	require.NoError(t, err)
	assert.False(t, ok)

	t.Run("update", func(t *testing.T) {
		upd, err := svc.Update(fis.ID, course.UpdateCourse{Name: null.StringFrom("Physics I"), IsActive: null.BoolFrom(false)})
		require.NoError(t, err)
		assert.Equal(t, "FIS100", upd.Code)
		assert.Equal(t, "Physics I", upd.Name)
		assert.False(t, upd.IsActive)

		_, err = svc.Update(fis.ID, course.UpdateCourse{Code: null.StringFrom("mat101")})
		assert.ErrorIs(t, err, core.ErrDuplicateKey)
		_, err = svc.Update(99, course.UpdateCourse{})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		ok, err := svc.Delete(mat.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = svc.Delete(mat.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = svc.Exists("MAT101")
		require.NoError(t, err)
		assert.False(t, ok)
		all, err := svc.QueryAll()
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, fis.ID, all[0].ID)

		stats := svc.Stats()
		assert.Equal(t, "course", stats.Kind)
		assert.Equal(t, 1, stats.Live)
		assert.Equal(t, 3, stats.NextID)
	})
}
