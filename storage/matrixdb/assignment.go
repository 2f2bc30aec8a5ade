package matrixdb

import (
	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/assignment"
	"github.com/ferjoo/tutorias/core/sparse"
)

// both assignment kinds share one layout: id, person, course, active, created, updated
const (
	assignmentID = iota
	assignmentPersonID
	assignmentCourseCode
	assignmentIsActive
	assignmentCreatedAt
	assignmentUpdatedAt
)

func pairKey(personID int, code string) string {
	if personID == 0 || code == "" {
		return ""
	}
	return idKey(personID) + "|" + code
}

var tutorCourseSchema = Schema[assignment.TutorCourse]{
	Kind:    "tutor_course",
	Columns: []string{"assignment_id", "tutor_id", "course_code", "is_active", "created_at", "updated_at"},
	Encode: func(a assignment.TutorCourse) []sparse.Value {
		return []sparse.Value{
			assignmentID:         sparse.Int(int64(a.ID)),
			assignmentPersonID:   sparse.Int(int64(a.TutorID)),
			assignmentCourseCode: sparse.Text(a.CourseCode),
			assignmentIsActive:   sparse.Bool(a.IsActive),
			assignmentCreatedAt:  sparse.Timestamp(a.CreatedAt),
			assignmentUpdatedAt:  sparse.Timestamp(a.UpdatedAt),
		}
	},
	Decode: func(row []sparse.Value) assignment.TutorCourse {
		return assignment.TutorCourse{
			ID:         int(row[assignmentID].AsInt()),
			TutorID:    int(row[assignmentPersonID].AsInt()),
			CourseCode: row[assignmentCourseCode].AsText(),
			IsActive:   row[assignmentIsActive].AsBool(),
			CreatedAt:  row[assignmentCreatedAt].AsTime(),
			UpdatedAt:  row[assignmentUpdatedAt].AsTime(),
		}
	},
	SetID: func(a *assignment.TutorCourse, id int) { a.ID = id },
	Indexes: []Index[assignment.TutorCourse]{
		{Name: "tutor_course", Unique: true, Key: func(a assignment.TutorCourse) string { return pairKey(a.TutorID, a.CourseCode) }},
		{Name: "tutor_id", Key: func(a assignment.TutorCourse) string { return idKey(a.TutorID) }},
		{Name: "course_code", Key: func(a assignment.TutorCourse) string { return a.CourseCode }},
	},
}

var studentCourseSchema = Schema[assignment.StudentCourse]{
	Kind:    "student_course",
	Columns: []string{"assignment_id", "student_id", "course_code", "is_active", "created_at", "updated_at"},
	Encode: func(a assignment.StudentCourse) []sparse.Value {
		return []sparse.Value{
			assignmentID:         sparse.Int(int64(a.ID)),
			assignmentPersonID:   sparse.Int(int64(a.StudentID)),
			assignmentCourseCode: sparse.Text(a.CourseCode),
			assignmentIsActive:   sparse.Bool(a.IsActive),
			assignmentCreatedAt:  sparse.Timestamp(a.CreatedAt),
			assignmentUpdatedAt:  sparse.Timestamp(a.UpdatedAt),
		}
	},
	Decode: func(row []sparse.Value) assignment.StudentCourse {
		return assignment.StudentCourse{
			ID:         int(row[assignmentID].AsInt()),
			StudentID:  int(row[assignmentPersonID].AsInt()),
			CourseCode: row[assignmentCourseCode].AsText(),
			IsActive:   row[assignmentIsActive].AsBool(),
			CreatedAt:  row[assignmentCreatedAt].AsTime(),
			UpdatedAt:  row[assignmentUpdatedAt].AsTime(),
		}
	},
	SetID: func(a *assignment.StudentCourse, id int) { a.ID = id },
	Indexes: []Index[assignment.StudentCourse]{
		{Name: "student_course", Unique: true, Key: func(a assignment.StudentCourse) string { return pairKey(a.StudentID, a.CourseCode) }},
		{Name: "student_id", Key: func(a assignment.StudentCourse) string { return idKey(a.StudentID) }},
		{Name: "course_code", Key: func(a assignment.StudentCourse) string { return a.CourseCode }},
	},
}

type assignmentRepository struct {
	tutors   *Table[assignment.TutorCourse]
	students *Table[assignment.StudentCourse]
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db *DB) assignment.Repository {
	return &assignmentRepository{tutors: db.tutorCourses, students: db.studentCourses}
}

// Tutor-course

func (repo *assignmentRepository) CreateTutorCourse(a assignment.TutorCourse) (assignment.TutorCourse, error) {
	return repo.tutors.Insert(a)
}

func (repo *assignmentRepository) QueryAllTutorCourses() ([]assignment.TutorCourse, error) {
	return repo.tutors.All(), nil
}

func (repo *assignmentRepository) GetTutorCourseByID(id int) (assignment.TutorCourse, error) {
	return repo.tutors.Get(id)
}

func (repo *assignmentRepository) GetTutorCourse(tutorID int, code string) (assignment.TutorCourse, error) {
	return repo.tutors.GetBy("tutor_course", pairKey(tutorID, code))
}

func (repo *assignmentRepository) GetTutorCoursesByTutor(tutorID int) ([]assignment.TutorCourse, error) {
	return repo.tutors.Find("tutor_id", idKey(tutorID))
}

func (repo *assignmentRepository) GetTutorCoursesByCourse(code string) ([]assignment.TutorCourse, error) {
	return repo.tutors.Find("course_code", code)
}

func (repo *assignmentRepository) UpdateTutorCourse(a assignment.TutorCourse) (assignment.TutorCourse, error) {
	return repo.tutors.Replace(a.ID, a)
}

func (repo *assignmentRepository) DeleteTutorCourse(id int) (bool, error) {
	return repo.tutors.Delete(id)
}

func (repo *assignmentRepository) TutorCourseStats() core.StoreStats {
	return repo.tutors.Stats().StoreStats
}

// Student-course

func (repo *assignmentRepository) CreateStudentCourse(a assignment.StudentCourse) (assignment.StudentCourse, error) {
	return repo.students.Insert(a)
}

func (repo *assignmentRepository) QueryAllStudentCourses() ([]assignment.StudentCourse, error) {
	return repo.students.All(), nil
}

func (repo *assignmentRepository) GetStudentCourseByID(id int) (assignment.StudentCourse, error) {
	return repo.students.Get(id)
}

func (repo *assignmentRepository) GetStudentCourse(studentID int, code string) (assignment.StudentCourse, error) {
	return repo.students.GetBy("student_course", pairKey(studentID, code))
}

func (repo *assignmentRepository) GetStudentCoursesByStudent(studentID int) ([]assignment.StudentCourse, error) {
	return repo.students.Find("student_id", idKey(studentID))
}

func (repo *assignmentRepository) GetStudentCoursesByCourse(code string) ([]assignment.StudentCourse, error) {
	return repo.students.Find("course_code", code)
}

func (repo *assignmentRepository) UpdateStudentCourse(a assignment.StudentCourse) (assignment.StudentCourse, error) {
	return repo.students.Replace(a.ID, a)
}

func (repo *assignmentRepository) DeleteStudentCourse(id int) (bool, error) {
	return repo.students.Delete(id)
}

func (repo *assignmentRepository) StudentCourseStats() core.StoreStats {
	return repo.students.Stats().StoreStats
}
