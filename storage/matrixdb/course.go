package matrixdb

import (
	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/course"
	"github.com/ferjoo/tutorias/core/sparse"
)

const (
	courseID = iota
	courseCode
	courseName
	courseIsActive
	courseCreatedAt
)

var courseSchema = Schema[course.Course]{
	Kind:    "course",
	Columns: []string{"course_id", "codigo", "nombre", "is_active", "created_at"},
	Encode: func(c course.Course) []sparse.Value {
		return []sparse.Value{
			courseID:        sparse.Int(int64(c.ID)),
			courseCode:      sparse.Text(c.Code),
			courseName:      sparse.Text(c.Name),
			courseIsActive:  sparse.Bool(c.IsActive),
			courseCreatedAt: sparse.Timestamp(c.CreatedAt),
		}
	},
	Decode: func(row []sparse.Value) course.Course {
		return course.Course{
			ID:        int(row[courseID].AsInt()),
			Code:      row[courseCode].AsText(),
			Name:      row[courseName].AsText(),
			IsActive:  row[courseIsActive].AsBool(),
			CreatedAt: row[courseCreatedAt].AsTime(),
		}
	},
	SetID: func(c *course.Course, id int) { c.ID = id },
	Indexes: []Index[course.Course]{
		{Name: "codigo", Unique: true, Key: func(c course.Course) string { return c.Code }},
	},
}

type courseRepository struct {
	tbl *Table[course.Course]
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{tbl: db.courses}
}

func (repo *courseRepository) CreateCourse(c course.Course) (course.Course, error) {
	return repo.tbl.Insert(c)
}

func (repo *courseRepository) QueryAllCourses() ([]course.Course, error) {
	return repo.tbl.All(), nil
}

func (repo *courseRepository) GetCourseByID(id int) (course.Course, error) {
	return repo.tbl.Get(id)
}

func (repo *courseRepository) GetCourseByCode(code string) (course.Course, error) {
	return repo.tbl.GetBy("codigo", code)
}

func (repo *courseRepository) UpdateCourse(c course.Course) (course.Course, error) {
	return repo.tbl.Replace(c.ID, c)
}

func (repo *courseRepository) DeleteCourse(id int) (bool, error) {
	return repo.tbl.Delete(id)
}

func (repo *courseRepository) Stats() core.StoreStats {
	return repo.tbl.Stats().StoreStats
}
