// Package matrixdb stores the entity kinds in sparse-matrix backed tables with hash indexes.
package matrixdb

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/assignment"
	"github.com/ferjoo/tutorias/core/course"
	"github.com/ferjoo/tutorias/core/schedule"
	"github.com/ferjoo/tutorias/core/student"
	"github.com/ferjoo/tutorias/core/user"
)

type (
	DB struct {
		users          *Table[user.User]
		students       *Table[student.Student]
		courses        *Table[course.Course]
		schedules      *Table[schedule.Schedule]
		tutorCourses   *Table[assignment.TutorCourse]
		studentCourses *Table[assignment.StudentCourse]
	}

	// Snapshot is the serializable state of every table of a DB.
	Snapshot struct {
		SavedAt time.Time                `json:"saved_at"`
		Tables  map[string]TableSnapshot `json:"tables"`
	}

	table interface {
		Kind() string
		Stats() TableStats
		Snapshot() TableSnapshot
		Restore(snap TableSnapshot) error
	}
)

// Open creates an empty DB sized by conf.
func Open(conf *core.Config) (*DB, error) {
	var (
		db  DB
		err error
	)
	capacity, buckets := conf.TableCapacity, conf.IndexBuckets
	if db.users, err = NewTable(userSchema, capacity, buckets); err != nil {
		return nil, err
	}
	if db.students, err = NewTable(studentSchema, capacity, buckets); err != nil {
		return nil, err
	}
	if db.courses, err = NewTable(courseSchema, capacity, buckets); err != nil {
		return nil, err
	}
	if db.schedules, err = NewTable(scheduleSchema, capacity, buckets); err != nil {
		return nil, err
	}
	if db.tutorCourses, err = NewTable(tutorCourseSchema, capacity, buckets); err != nil {
		return nil, err
	}
	if db.studentCourses, err = NewTable(studentCourseSchema, capacity, buckets); err != nil {
		return nil, err
	}
	return &db, nil
}

func (db *DB) tables() []table {
	return []table{db.users, db.students, db.courses, db.schedules, db.tutorCourses, db.studentCourses}
}

// Stats returns the statistics of every table.
func (db *DB) Stats() []TableStats {
	tbls := db.tables()
	stats := make([]TableStats, 0, len(tbls))
	for _, tbl := range tbls {
		stats = append(stats, tbl.Stats())
	}
	return stats
}

func (db *DB) Snapshot() Snapshot {
	snap := Snapshot{SavedAt: time.Now().UTC(), Tables: make(map[string]TableSnapshot)}
	for _, tbl := range db.tables() {
		snap.Tables[tbl.Kind()] = tbl.Snapshot()
	}
	return snap
}

// Restore loads every table present in snap; tables missing from it are left untouched.
func (db *DB) Restore(snap Snapshot) error {
	for _, tbl := range db.tables() {
		tsnap, ok := snap.Tables[tbl.Kind()]
		if !ok {
			continue
		}
		if err := tbl.Restore(tsnap); err != nil {
			return errors.Wrapf(err, "restoring %s", tbl.Kind())
		}
	}
	return nil
}
