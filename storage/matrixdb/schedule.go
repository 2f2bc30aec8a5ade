package matrixdb

import (
	"strconv"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/schedule"
	"github.com/ferjoo/tutorias/core/sparse"
)

const (
	scheduleID = iota
	scheduleCourseCode
	scheduleStart
	scheduleEnd
	scheduleTutorID
	scheduleUploadDate
	scheduleIsActive
	scheduleCreatedAt
)

var scheduleSchema = Schema[schedule.Schedule]{
	Kind: "schedule",
	Columns: []string{
		"schedule_id", "codigo_curso", "horario_inicio", "horario_fin",
		"tutor_id", "upload_date", "is_active", "created_at",
	},
	Encode: func(s schedule.Schedule) []sparse.Value {
		return []sparse.Value{
			scheduleID:         sparse.Int(int64(s.ID)),
			scheduleCourseCode: sparse.Text(s.CourseCode),
			scheduleStart:      sparse.Text(s.Start),
			scheduleEnd:        sparse.Text(s.End),
			scheduleTutorID:    sparse.Int(int64(s.TutorID)),
			scheduleUploadDate: sparse.Timestamp(s.UploadDate),
			scheduleIsActive:   sparse.Bool(s.IsActive),
			scheduleCreatedAt:  sparse.Timestamp(s.CreatedAt),
		}
	},
	Decode: func(row []sparse.Value) schedule.Schedule {
		return schedule.Schedule{
			ID:         int(row[scheduleID].AsInt()),
			CourseCode: row[scheduleCourseCode].AsText(),
			Start:      row[scheduleStart].AsText(),
			End:        row[scheduleEnd].AsText(),
			TutorID:    int(row[scheduleTutorID].AsInt()),
			UploadDate: row[scheduleUploadDate].AsTime(),
			IsActive:   row[scheduleIsActive].AsBool(),
			CreatedAt:  row[scheduleCreatedAt].AsTime(),
		}
	},
	SetID: func(s *schedule.Schedule, id int) { s.ID = id },
	Indexes: []Index[schedule.Schedule]{
		{Name: "codigo_curso", Key: func(s schedule.Schedule) string { return s.CourseCode }},
		{Name: "tutor_id", Key: func(s schedule.Schedule) string { return idKey(s.TutorID) }},
	},
}

type scheduleRepository struct {
	tbl *Table[schedule.Schedule]
}

var _ schedule.Repository = (*scheduleRepository)(nil)

func NewScheduleRepository(db *DB) schedule.Repository {
	return &scheduleRepository{tbl: db.schedules}
}

func (repo *scheduleRepository) CreateSchedule(s schedule.Schedule) (schedule.Schedule, error) {
	return repo.tbl.Insert(s)
}

func (repo *scheduleRepository) QueryAllSchedules() ([]schedule.Schedule, error) {
	return repo.tbl.All(), nil
}

func (repo *scheduleRepository) GetScheduleByID(id int) (schedule.Schedule, error) {
	return repo.tbl.Get(id)
}

func (repo *scheduleRepository) GetSchedulesByCourse(code string) ([]schedule.Schedule, error) {
	return repo.tbl.Find("codigo_curso", code)
}

func (repo *scheduleRepository) GetSchedulesByTutor(tutorID int) ([]schedule.Schedule, error) {
	return repo.tbl.Find("tutor_id", idKey(tutorID))
}

func (repo *scheduleRepository) UpdateSchedule(s schedule.Schedule) (schedule.Schedule, error) {
	return repo.tbl.Replace(s.ID, s)
}

func (repo *scheduleRepository) DeleteSchedule(id int) (bool, error) {
	return repo.tbl.Delete(id)
}

func (repo *scheduleRepository) Stats() core.StoreStats {
	return repo.tbl.Stats().StoreStats
}

// idKey indexes a foreign id; 0 (unset) is not indexed.
func idKey(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}
