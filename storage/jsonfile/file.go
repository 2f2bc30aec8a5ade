// Package jsonfile persists the grades state and the entity tables as JSON documents.
package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/ferjoo/tutorias/core"
)

// file is a JSON document on disk, replaced atomically on every write.
type file struct {
	path string
	log  core.Logger
}

func newFile(path string, logger core.Logger) (file, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(path, "path"),
		vala.IsNotNil(logger, "logger"),
	).Check(); err != nil {
		return file{}, errors.Wrap(err, "jsonfile")
	}
	return file{path: path, log: logger}, nil
}

// read decodes the document into v. found is false when the file does not exist.
func (f file) read(v interface{}) (found bool, err error) {
	fd, err := os.Open(f.path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "opening %s", f.path)
	}
	defer fd.Close()

	if err := json.NewDecoder(fd).Decode(v); err != nil {
		return true, errors.Wrapf(err, "decoding %s", f.path)
	}
	return true, nil
}

// write encodes v into a temporary file next to path and renames it over path.
func (f file) write(v interface{}) (err error) {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "creating %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(err, "creating temp file in %s", dir)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err = enc.Encode(v); err != nil {
		return errors.Wrapf(err, "encoding %s", f.path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrapf(err, "replacing %s", f.path)
	}
	return nil
}

// corrupt logs a document that could not be loaded; callers start over with a fresh state.
func (f file) corrupt(err error) {
	f.log.Warn("jsonfile: ignoring unreadable "+f.path+", starting with an empty state", err)
}
