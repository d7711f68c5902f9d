package types

import (
	"github.com/spf13/afero"
)

// FS is the filesystem collaborator every helper and the finder go through.
type FS = afero.Fs

// OSFS returns the host operating system's file system
func OSFS() FS {
	return afero.NewOsFs()
}

// MemFS returns an empty in-memory file system
func MemFS() FS {
	return afero.NewMemMapFs()
}

// ReadOnly wraps fs so that every mutating call fails
func ReadOnly(fs FS) FS {
	return afero.NewReadOnlyFs(fs)
}
