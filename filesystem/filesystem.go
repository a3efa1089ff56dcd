// Package filesystem provides a virtualized abstraction layer for all filesystem operations.
//
// The afero backend can be swapped for an in-memory one so tests never touch the real disk.
package filesystem

import (
	"errors"
	"io/fs"

	"github.com/spf13/afero"
)

var backend = afero.Afero{Fs: afero.NewOsFs()}

// API returns the active afero.Afero instance for filesystem interaction.
func API() afero.Afero {
	return backend
}

// SetOsFs restores the filesystem backend to the native operating system implementation.
func SetOsFs() {
	backend = afero.Afero{Fs: afero.NewOsFs()}
}

// SetMemMapFs switches to a volatile in-memory backend.
func SetMemMapFs() {
	backend = afero.Afero{Fs: afero.NewMemMapFs()}
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	err := API().Remove(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
