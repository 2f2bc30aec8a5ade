package matrixdb

import (
	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/sparse"
	"github.com/ferjoo/tutorias/core/student"
)

const (
	studentID = iota
	studentCarnet
	studentPasswordHash
	studentName
	studentIsActive
	studentIsAdmin
	studentCreatedAt
	studentUpdatedAt
)

var studentSchema = Schema[student.Student]{
	Kind: "student",
	Columns: []string{
		"student_id", "carnet", "password_hash", "nombre",
		"is_active", "is_admin", "created_at", "updated_at",
	},
	Encode: func(s student.Student) []sparse.Value {
		return []sparse.Value{
			studentID:           sparse.Int(int64(s.ID)),
			studentCarnet:       sparse.Text(s.Carnet),
			studentPasswordHash: sparse.Text(string(s.PasswordHash)),
			studentName:         sparse.Text(s.Name),
			studentIsActive:     sparse.Bool(s.IsActive),
			studentIsAdmin:      sparse.Bool(s.IsAdmin),
			studentCreatedAt:    sparse.Timestamp(s.CreatedAt),
			studentUpdatedAt:    sparse.Timestamp(s.UpdatedAt),
		}
	},
	Decode: func(row []sparse.Value) student.Student {
		return student.Student{
			ID:           int(row[studentID].AsInt()),
			Carnet:       row[studentCarnet].AsText(),
			PasswordHash: bytesOrNil(row[studentPasswordHash].AsText()),
			Name:         row[studentName].AsText(),
			IsActive:     row[studentIsActive].AsBool(),
			IsAdmin:      row[studentIsAdmin].AsBool(),
			CreatedAt:    row[studentCreatedAt].AsTime(),
			UpdatedAt:    row[studentUpdatedAt].AsTime(),
		}
	},
	SetID: func(s *student.Student, id int) { s.ID = id },
	Indexes: []Index[student.Student]{
		{Name: "carnet", Unique: true, Key: func(s student.Student) string { return s.Carnet }},
	},
}

type studentRepository struct {
	tbl *Table[student.Student]
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{tbl: db.students}
}

func (repo *studentRepository) CreateStudent(s student.Student) (student.Student, error) {
	return repo.tbl.Insert(s)
}

func (repo *studentRepository) QueryAllStudents() ([]student.Student, error) {
	return repo.tbl.All(), nil
}

func (repo *studentRepository) GetStudentByID(id int) (student.Student, error) {
	return repo.tbl.Get(id)
}

func (repo *studentRepository) GetStudentByCarnet(carnet string) (student.Student, error) {
	return repo.tbl.GetBy("carnet", carnet)
}

func (repo *studentRepository) UpdateStudent(s student.Student) (student.Student, error) {
	return repo.tbl.Replace(s.ID, s)
}

func (repo *studentRepository) DeleteStudent(id int) (bool, error) {
	return repo.tbl.Delete(id)
}

func (repo *studentRepository) Stats() core.StoreStats {
	return repo.tbl.Stats().StoreStats
}
