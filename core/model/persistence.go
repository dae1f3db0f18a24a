package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
)

// SaveModel serializes m to path with encoding/gob.
//
// The model is first written to a temporary file in the same directory and
// then renamed over path, so readers never observe a partially written
// artifact and any previous artifact is replaced in one step. The directory
// must already exist.
//
// Example:
//
//	if err := model.SaveModel(reg, "solar.gob"); err != nil {
//		log.Fatal(err)
//	}
func SaveModel(m interface{}, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create file %s", path)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := SaveModelToWriter(m, tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.Wrapf(err, "failed to sync file %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrapf(err, "failed to close file %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrapf(err, "failed to replace file %s", path)
	}
	return nil
}

// LoadModel deserializes the gob artifact at path into m, which must be a
// pointer to the same concrete type that was saved.
func LoadModel(m interface{}, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open file %s", path)
	}
	defer func() { _ = f.Close() }()

	return LoadModelFromReader(m, f)
}

// SaveModelToWriter gob-encodes m to w.
func SaveModelToWriter(m interface{}, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader gob-decodes a model from r into m.
func LoadModelFromReader(m interface{}, r io.Reader) error {
	if err := gob.NewDecoder(r).Decode(m); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
