package fileio

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"gofileio/pkg/errors"
	"gofileio/pkg/types"
)

// VisitFunc is called each time the finder dequeues a directory. dir is
// relative to the start directory, pending is the number of directories
// still queued behind it.
type VisitFunc func(dir string, visited, pending int)

// FinderOption configures a Finder
type FinderOption func(*Finder)

// WithLister replaces the filesystem-backed directory lister
func WithLister(l DirectoryLister) FinderOption {
	return func(f *Finder) { f.lister = l }
}

// WithFinderLogger sets the logger used for per-directory debug output
func WithFinderLogger(l zerolog.Logger) FinderOption {
	return func(f *Finder) { f.logger = l }
}

// WithSkipUnreadable makes the finder skip directories it lacks permission
// to list instead of aborting the search.
func WithSkipUnreadable(skip bool) FinderOption {
	return func(f *Finder) { f.skipUnreadable = skip }
}

// WithCycleDetection keeps a visited set keyed by canonical absolute path so
// a directory reachable twice is only searched once.
func WithCycleDetection(detect bool) FinderOption {
	return func(f *Finder) { f.detectCycles = detect }
}

// WithVisitFunc registers a progress callback
func WithVisitFunc(fn VisitFunc) FinderOption {
	return func(f *Finder) { f.onVisit = fn }
}

// Finder searches a directory tree breadth-first for a relative file path.
// A Finder holds no per-search state and may be shared between goroutines.
type Finder struct {
	fs             types.FS
	resolver       *Resolver
	lister         DirectoryLister
	logger         zerolog.Logger
	skipUnreadable bool
	detectCycles   bool
	onVisit        VisitFunc
}

// NewFinder creates a finder probing fsys through resolver
func NewFinder(fsys types.FS, resolver *Resolver, opts ...FinderOption) *Finder {
	f := &Finder{
		fs:       fsys,
		resolver: resolver,
		lister:   NewLister(fsys, resolver),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Find searches startDir and its subdirectories, shallowest first, for
// target. A completed search that did not locate target returns a NotFound
// result and a nil error; the error is reserved for traversal failures,
// which are returned as the lister reported them.
//
// Result.Path is relative to startDir, Result.BaseRelPath to the base
// directory.
func (f *Finder) Find(startDir, target string) (types.FindResult, error) {
	began := time.Now()
	res := types.FindResult{Target: target, Status: types.NotFound}
	l := f.logger.With().Str("start", startDir).Str("target", target).Logger()

	frontier := []string{"."}
	var visited map[string]struct{}
	if f.detectCycles {
		visited = make(map[string]struct{})
	}

	for cursor := 0; cursor < len(frontier); cursor++ {
		current := frontier[cursor]
		dir := filepath.Join(startDir, current)

		if visited != nil {
			key := f.canonical(dir)
			if _, seen := visited[key]; seen {
				l.Debug().Str("dir", dir).Msg("already visited, skipping")
				continue
			}
			visited[key] = struct{}{}
		}

		res.Stats.Visited++
		if f.onVisit != nil {
			f.onVisit(current, res.Stats.Visited, len(frontier)-cursor-1)
		}

		candidate := filepath.Join(current, target)
		res.Stats.Probes++
		if f.exists(filepath.Join(startDir, candidate)) {
			res.Status = types.Found
			res.Path = candidate
			res.BaseRelPath = filepath.Join(startDir, candidate)
			res.Stats.Duration = time.Since(began)
			l.Debug().Str("path", res.BaseRelPath).Int("visited", res.Stats.Visited).Msg("file found")
			return res, nil
		}
		l.Trace().Str("dir", dir).Int("cursor", cursor).Msg("candidate absent")

		names, err := f.lister.ListSubdirectories(dir)
		res.Stats.Listings++
		if err != nil {
			if f.skipUnreadable && errors.IsPermission(err) {
				res.Stats.Skipped++
				l.Warn().Str("dir", dir).Err(err).Msg("skipping unreadable directory")
				continue
			}
			res.Stats.Duration = time.Since(began)
			return res, err
		}
		for _, name := range names {
			frontier = append(frontier, filepath.Join(current, name))
		}
		if pending := len(frontier) - cursor - 1; pending > res.Stats.MaxFrontier {
			res.Stats.MaxFrontier = pending
		}
	}

	res.Stats.Duration = time.Since(began)
	l.Debug().Int("visited", res.Stats.Visited).Msg("search exhausted")
	return res, nil
}

// FindFile is Find with a not-found search reported as a FileNotFound error
// naming target. It returns the path relative to startDir.
func (f *Finder) FindFile(startDir, target string) (string, error) {
	res, err := f.Find(startDir, target)
	if err != nil {
		return "", err
	}
	if !res.Found() {
		return "", errors.FileNotFoundError(target)
	}
	return res.Path, nil
}

// exists mirrors an existence check: any stat failure counts as absent.
func (f *Finder) exists(rel string) bool {
	_, err := f.fs.Stat(f.resolver.Resolve(rel))
	return err == nil
}

func (f *Finder) canonical(dir string) string {
	abs := f.resolver.Resolve(dir)
	if _, ok := f.fs.(*afero.OsFs); ok {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			return resolved
		}
	}
	return abs
}
