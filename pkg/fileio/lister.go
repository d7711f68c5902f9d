package fileio

import (
	"os"

	"gofileio/pkg/types"
)

// DirectoryLister returns the immediate child directory names of a path
// relative to the base directory, in the order the filesystem reports them.
type DirectoryLister interface {
	ListSubdirectories(path string) ([]string, error)
}

// Lister is the filesystem-backed DirectoryLister
type Lister struct {
	fs       types.FS
	resolver *Resolver
}

// NewLister creates a lister reading through fsys
func NewLister(fsys types.FS, resolver *Resolver) *Lister {
	return &Lister{fs: fsys, resolver: resolver}
}

// ListSubdirectories lists child directories of path. Entries are not sorted.
func (l *Lister) ListSubdirectories(path string) ([]string, error) {
	infos, err := l.readDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() {
			names = append(names, info.Name())
		}
	}
	return names, nil
}

// ListEntries lists every child name of path, files and directories alike
func (l *Lister) ListEntries(path string) ([]string, error) {
	infos, err := l.readDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name())
	}
	return names, nil
}

// readDir uses File.Readdir rather than afero.ReadDir, which sorts by name.
func (l *Lister) readDir(path string) ([]os.FileInfo, error) {
	abs := l.resolver.Resolve(path)
	f, err := l.fs.Open(abs)
	if err != nil {
		return nil, classifyFileError(path, "failed to read directory", err)
	}
	defer f.Close()

	infos, err := f.Readdir(-1)
	if err != nil {
		return nil, classifyFileError(path, "failed to read directory", err)
	}
	return infos, nil
}
