package fileio

import (
	"os"
	"path/filepath"
	"strings"

	"gofileio/pkg/errors"
)

// Resolver turns paths relative to a fixed base directory into absolute
// paths. It never touches the filesystem after construction.
type Resolver struct {
	base string
}

// NewResolver creates a resolver rooted at base. An empty base captures the
// process working directory once, at construction.
func NewResolver(base string) (*Resolver, error) {
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to determine working directory")
		}
		base = wd
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to resolve base directory").WithPath(base)
	}
	return &Resolver{base: abs}, nil
}

// Base returns the absolute base directory
func (r *Resolver) Base() string {
	return r.base
}

// Resolve joins rel onto the base directory. An absolute rel is still
// treated as relative to the base.
func (r *Resolver) Resolve(rel string) string {
	return filepath.Join(r.base, rel)
}

// Join joins path elements with the platform separator
func Join(parts ...string) string {
	return filepath.Join(parts...)
}

// DirName returns the absolute directory containing rel
func (r *Resolver) DirName(rel string) string {
	return filepath.Dir(r.Resolve(rel))
}

// RelativeDirName returns the directory containing rel, expressed relative to
// the base and prefixed with "./". Paths outside the base come back absolute.
func (r *Resolver) RelativeDirName(rel string) string {
	dir := r.DirName(rel)
	out, err := filepath.Rel(r.base, dir)
	if err != nil || out == ".." || strings.HasPrefix(out, ".."+string(filepath.Separator)) {
		return dir
	}
	if out == "." {
		return out
	}
	return "." + string(filepath.Separator) + out
}

// BaseName returns the last element of rel
func BaseName(rel string) string {
	return filepath.Base(rel)
}
