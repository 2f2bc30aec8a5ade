package jsonfile

import (
	"github.com/ferjoo/tutorias/core"
	"github.com/ferjoo/tutorias/storage/matrixdb"
)

// StateFile stores snapshots of the entity tables.
type StateFile struct {
	file
}

func NewStateFile(path string, logger core.Logger) (*StateFile, error) {
	f, err := newFile(path, logger)
	if err != nil {
		return nil, err
	}
	return &StateFile{file: f}, nil
}

func (sf *StateFile) Save(snap matrixdb.Snapshot) error {
	return sf.write(snap)
}

// Load reads the last snapshot; ok is false when there is none or it is unreadable.
func (sf *StateFile) Load() (snap matrixdb.Snapshot, ok bool) {
	found, err := sf.read(&snap)
	if !found {
		return matrixdb.Snapshot{}, false
	}
	if err != nil {
		sf.corrupt(err)
		return matrixdb.Snapshot{}, false
	}
	return snap, true
}

// LoadInto restores the last snapshot into db. A snapshot db rejects is reported like a corrupt file.
func (sf *StateFile) LoadInto(db *matrixdb.DB) {
	snap, ok := sf.Load()
	if !ok {
		return
	}
	if err := db.Restore(snap); err != nil {
		sf.corrupt(err)
	}
}
