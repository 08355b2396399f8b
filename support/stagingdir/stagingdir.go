// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stagingdir builds a directory in a temporary location and then
// atomically moves it into place.
package stagingdir

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// D manages a staging directory.
//
// While D is active, it resides in a temporary location. Once finished, D
// can either be committed or destroyed. On commit, it is atomically moved into
// its destination; on destroy, it is deleted along with all of its contents.
type D struct {
	// tempDir is the temporary directory to use for staging.
	tempDir string

	// path is the path of the staging directory.
	path string
}

// New creates a new staging directory underneath of tempDir. If tempDir is
// empty, the directory is created next to dest, so that Commit remains a
// same-filesystem rename.
//
// The directory will be created with the specified prefix.
func New(tempDir, dest string) (*D, error) {
	if tempDir == "" {
		tempDir = filepath.Dir(dest)
	}

	stagingPath, err := os.MkdirTemp(tempDir, "."+filepath.Base(dest)+".")
	if err != nil {
		return nil, errors.Wrapf(err, "creating staging directory in %q", tempDir)
	}

	return &D{
		tempDir: tempDir,
		path:    stagingPath,
	}, nil
}

// Path builds a path relative to the staging directory from the provided
// components.
func (sd *D) Path(components ...string) string {
	if sd.path == "" {
		panic("staging directory is no longer valid")
	}
	return filepath.Join(append([]string{sd.path}, components...)...)
}

// Valid returns true if the staging directory has been neither committed nor
// destroyed.
func (sd *D) Valid() bool { return sd.path != "" }

// Destroy purges the staging directory and its contents.
//
// Destroy is a no-op if the directory has already been committed or
// destroyed.
func (sd *D) Destroy() error {
	if sd.path == "" {
		return nil
	}

	if err := os.RemoveAll(sd.path); err != nil {
		return err
	}

	sd.path = ""
	return nil
}

// Commit finalizes the staging directory, atomically moving it to dest.
//
// If something already exists at dest, it is replaced.
func (sd *D) Commit(dest string) error {
	if sd.path == "" {
		return errors.New("invalid staging directory")
	}

	if _, err := os.Stat(dest); err == nil {
		// Move the existing entry aside, then remove it once the new directory
		// is in place.
		killDir, err := os.MkdirTemp(sd.tempDir, ".overwrite.")
		if err != nil {
			return errors.Wrap(err, "create overwrite directory")
		}
		defer func() {
			_ = os.RemoveAll(killDir)
		}()

		_ = os.Rename(dest, filepath.Join(killDir, filepath.Base(dest)))
	}

	if err := os.Rename(sd.path, dest); err != nil {
		return errors.Wrapf(err, "moving staging directory into place (%q => %q)", sd.path, dest)
	}
	sd.path = ""
	return nil
}
