package jsonfile

import (
	"time"

	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/core/grades"
	"github.com/ferjoo/tutorias/core/sparse"
)

type (
	gradesDocument struct {
		Courses        map[string]grades.CourseInfo `json:"courses"`
		SparseMatrices map[string]matrixDocument   `json:"sparse_matrices"`
		Metadata       metadata                     `json:"metadata"`
	}

	matrixDocument struct {
		MatrixData map[string]float64 `json:"matrix_data"` // "row,col" -> grade
		Rows       int                `json:"rows"`
		Cols       int                `json:"cols"`
		Density    float64            `json:"density"`
	}

	metadata struct {
		CreatedAt   time.Time `json:"created_at"`
		LastUpdated time.Time `json:"last_updated"`
	}
)

// GradesFile stores the grades engine state.
type GradesFile struct {
	file
}

var _ grades.Store = (*GradesFile)(nil)

func NewGradesFile(path string, logger core.Logger) (*GradesFile, error) {
	f, err := newFile(path, logger)
	if err != nil {
		return nil, err
	}
	return &GradesFile{file: f}, nil
}

// Save writes state and stamps its LastUpdated.
func (gf *GradesFile) Save(state *grades.State) error {
	state.LastUpdated = time.Now().UTC()
	doc := gradesDocument{
		Courses:        state.Courses,
		SparseMatrices: make(map[string]matrixDocument, len(state.Matrices)),
		Metadata:       metadata{CreatedAt: state.CreatedAt, LastUpdated: state.LastUpdated},
	}
	for key, m := range state.Matrices {
		data := make(map[string]float64, m.Len())
		for _, entry := range m.Entries() {
			data[sparse.FormatCellKey(entry.Cell)] = entry.Value.AsFloat()
		}
		doc.SparseMatrices[key] = matrixDocument{
			MatrixData: data,
			Rows:       m.Rows(),
			Cols:       m.Cols(),
			Density:    m.Density(),
		}
	}
	return gf.write(doc)
}

// Load reads the persisted state. A missing or unreadable file yields a fresh state.
func (gf *GradesFile) Load() (*grades.State, error) {
	var doc gradesDocument
	found, err := gf.read(&doc)
	if !found {
		return grades.NewState(), nil
	}
	if err == nil {
		var state *grades.State
		if state, err = decodeGrades(doc); err == nil {
			return state, nil
		}
	}
	gf.corrupt(err)
	return grades.NewState(), nil
}

func decodeGrades(doc gradesDocument) (*grades.State, error) {
	state := grades.NewState()
	if !doc.Metadata.CreatedAt.IsZero() {
		state.CreatedAt = doc.Metadata.CreatedAt
	}
	if !doc.Metadata.LastUpdated.IsZero() {
		state.LastUpdated = doc.Metadata.LastUpdated
	}
	for key, info := range doc.Courses {
		state.Courses[key] = info
	}
	for key, md := range doc.SparseMatrices {
		info, ok := doc.Courses[key]
		if !ok {
			return nil, errors.Errorf("matrix %s has no course", key)
		}
		if md.Rows != len(info.Activities) || md.Cols != len(info.Students) {
			return nil, errors.Errorf("matrix %s is %dx%d, course has %d activities and %d students",
				key, md.Rows, md.Cols, len(info.Activities), len(info.Students))
		}
		cells := make(map[sparse.Cell]sparse.Value, len(md.MatrixData))
		for ck, grade := range md.MatrixData {
			cell, err := sparse.ParseCellKey(ck)
			if err != nil {
				return nil, errors.Wrapf(err, "matrix %s", key)
			}
			cells[cell] = sparse.Float(grade)
		}
		m, err := sparse.FromEntries(md.Rows, md.Cols, cells)
		if err != nil {
			return nil, errors.Wrapf(err, "matrix %s", key)
		}
		state.Matrices[key] = m
	}
	for key := range doc.Courses {
		if _, ok := doc.SparseMatrices[key]; !ok {
			return nil, errors.Errorf("course %s has no matrix", key)
		}
	}
	return state, nil
}
