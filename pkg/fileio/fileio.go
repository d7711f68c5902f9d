package fileio

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"reflect"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"gofileio/pkg/errors"
	"gofileio/pkg/types"
)

const (
	dirPerm  os.FileMode = 0755
	filePerm os.FileMode = 0644
)

// Option configures a FileIO
type Option func(*FileIO)

// WithFileProperties sets the default exists/override policy
func WithFileProperties(p types.FileProperties) Option {
	return func(f *FileIO) { f.props = p }
}

// WithLogger sets the logger
func WithLogger(l zerolog.Logger) Option {
	return func(f *FileIO) { f.logger = l }
}

// FileIO bundles the filesystem helpers around one base directory
type FileIO struct {
	fs       types.FS
	resolver *Resolver
	lister   *Lister
	props    types.FileProperties
	logger   zerolog.Logger
}

// New creates a FileIO resolving relative paths against base (the working
// directory when empty).
func New(fsys types.FS, base string, opts ...Option) (*FileIO, error) {
	resolver, err := NewResolver(base)
	if err != nil {
		return nil, err
	}
	f := &FileIO{
		fs:       fsys,
		resolver: resolver,
		lister:   NewLister(fsys, resolver),
		props:    types.DefaultFileProperties(),
		logger:   log.Logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Resolver returns the path resolver
func (f *FileIO) Resolver() *Resolver { return f.resolver }

// Lister returns the directory lister
func (f *FileIO) Lister() *Lister { return f.lister }

// FileProperties returns the default policy
func (f *FileIO) FileProperties() types.FileProperties { return f.props }

// Finder returns a finder sharing this FileIO's filesystem, base and logger
func (f *FileIO) Finder(opts ...FinderOption) *Finder {
	opts = append([]FinderOption{WithFinderLogger(f.logger), WithLister(f.lister)}, opts...)
	return NewFinder(f.fs, f.resolver, opts...)
}

// Exists reports whether rel exists. Stat errors count as absent.
func (f *FileIO) Exists(rel string) bool {
	_, err := f.fs.Stat(f.resolver.Resolve(rel))
	return err == nil
}

// IsDirectory reports whether rel exists and is a directory
func (f *FileIO) IsDirectory(rel string) bool {
	ok, err := afero.IsDir(f.fs, f.resolver.Resolve(rel))
	return err == nil && ok
}

// ReadFile returns the contents of rel as text
func (f *FileIO) ReadFile(rel string) (string, error) {
	data, err := afero.ReadFile(f.fs, f.resolver.Resolve(rel))
	if err != nil {
		return "", classifyFileError(rel, "failed to read file", err)
	}
	return string(data), nil
}

// ListEntries returns every child name of rel
func (f *FileIO) ListEntries(rel string) ([]string, error) {
	return f.lister.ListEntries(rel)
}

// ListSubdirectories returns the child directory names of rel
func (f *FileIO) ListSubdirectories(rel string) ([]string, error) {
	return f.lister.ListSubdirectories(rel)
}

// WriteFile writes src to rel under the default FileProperties
func (f *FileIO) WriteFile(rel, src string) error {
	return f.WriteFileWith(rel, src, f.props)
}

// WriteFileWith writes src to rel. When rel already exists, FileExistsError
// makes the call fail, OverrideFiles replaces the content, and otherwise the
// existing file is left alone.
func (f *FileIO) WriteFileWith(rel, src string, props types.FileProperties) error {
	abs := f.resolver.Resolve(rel)
	if f.Exists(rel) {
		if props.FileExistsError {
			return errors.ExistsError("file", rel)
		}
		if !props.OverrideFiles {
			f.logger.Debug().Str("path", rel).Msg("file exists, leaving untouched")
			return nil
		}
	}
	if err := afero.WriteFile(f.fs, abs, []byte(src), filePerm); err != nil {
		return classifyFileError(rel, "failed to write file", err)
	}
	f.logger.Debug().Str("path", rel).Int("bytes", len(src)).Msg("file written")
	return nil
}

// CreateDir creates the directory rel. Its parent must exist.
func (f *FileIO) CreateDir(rel string) error {
	return f.CreateDirWith(rel, f.props)
}

// CreateDirWith creates rel, failing on an existing path only when
// props.DirExistsError is set.
func (f *FileIO) CreateDirWith(rel string, props types.FileProperties) error {
	if f.Exists(rel) {
		if props.DirExistsError {
			return errors.ExistsError("directory", rel)
		}
		return nil
	}
	if err := f.fs.Mkdir(f.resolver.Resolve(rel), dirPerm); err != nil {
		return classifyFileError(rel, "failed to create directory", err)
	}
	return nil
}

// CreateScript writes a placeholder "<name>.js" into dir
func (f *FileIO) CreateScript(dir, name string) error {
	if name == "" {
		return errors.ValidationError("script name is required")
	}
	return f.WriteFile(Join(dir, name+".js"), "empty")
}

// CreateFileIfNotExists creates an empty rel and reports whether it did
func (f *FileIO) CreateFileIfNotExists(rel string) (bool, error) {
	if f.Exists(rel) {
		return false, nil
	}
	if err := afero.WriteFile(f.fs, f.resolver.Resolve(rel), nil, filePerm); err != nil {
		return false, classifyFileError(rel, "failed to create file", err)
	}
	return true, nil
}

// DeleteFile removes the file rel. A missing file is not an error; other
// failures, including rel being a directory, are reported only when
// FileExistsError is set.
func (f *FileIO) DeleteFile(rel string) error {
	return f.remove(rel, false, "failed to delete file")
}

// DeleteDir removes the empty directory rel with DeleteFile's error policy.
// A rel that is not a directory is left in place.
func (f *FileIO) DeleteDir(rel string) error {
	return f.remove(rel, true, "failed to delete directory")
}

func (f *FileIO) remove(rel string, wantDir bool, msg string) error {
	abs := f.resolver.Resolve(rel)
	info, err := f.fs.Stat(abs)
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return nil
	case err == nil && info.IsDir() != wantDir:
		if wantDir {
			err = errors.FileErrorf("not a directory")
		} else {
			err = errors.FileErrorf("is a directory")
		}
	case err == nil:
		err = f.fs.Remove(abs)
		if err == nil || stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}
	if f.props.FileExistsError {
		return classifyFileError(rel, msg, err)
	}
	f.logger.Debug().Str("path", rel).Err(err).Msg("ignoring delete failure")
	return nil
}

// EnsureDeleted removes rel if it exists and always reports a failure
func (f *FileIO) EnsureDeleted(rel string) error {
	if !f.Exists(rel) {
		return nil
	}
	if err := f.fs.Remove(f.resolver.Resolve(rel)); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "could not delete the file").WithPath(rel)
	}
	return nil
}

// OpenReader opens rel for streaming reads
func (f *FileIO) OpenReader(rel string) (io.ReadCloser, error) {
	file, err := f.fs.Open(f.resolver.Resolve(rel))
	if err != nil {
		return nil, classifyFileError(rel, "failed to open file", err)
	}
	return file, nil
}

// OpenWriter creates or truncates rel for streaming writes
func (f *FileIO) OpenWriter(rel string) (io.WriteCloser, error) {
	file, err := f.fs.Create(f.resolver.Resolve(rel))
	if err != nil {
		return nil, classifyFileError(rel, "failed to create file", err)
	}
	return file, nil
}

// ReadJSON decodes the JSON document at rel into v
func (f *FileIO) ReadJSON(rel string, v interface{}) error {
	src, err := f.ReadFile(rel)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(src), v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "failed to parse JSON").WithPath(rel)
	}
	return nil
}

// WriteJSON writes v to rel indented by two spaces, always overriding an
// existing file. v must be an object-like value: a non-nil map or slice, a
// struct or an array.
func (f *FileIO) WriteJSON(rel string, v interface{}) error {
	if !isJSONObject(v) {
		return errors.ValidationErrorf("json is not a correct type: %T", v)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "failed to encode JSON").WithPath(rel)
	}
	return f.WriteFileWith(rel, string(data), types.FileProperties{OverrideFiles: true})
}

func isJSONObject(v interface{}) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return !rv.IsNil()
	case reflect.Struct, reflect.Array:
		return true
	default:
		return false
	}
}

// Glob returns the slash-separated paths under the base directory matching
// a doublestar pattern such as "**/*.json".
func (f *FileIO) Glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, errors.ValidationErrorf("invalid glob pattern %q", pattern)
	}
	root := afero.NewIOFS(afero.NewBasePathFs(f.fs, f.resolver.Base()))
	matches, err := doublestar.Glob(root, pattern)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "glob failed").WithContext("pattern", pattern)
	}
	return matches, nil
}

// classifyFileError maps host errors onto error kinds, keeping the host
// error reachable through Unwrap.
func classifyFileError(rel, msg string, err error) error {
	switch {
	case stderrors.Is(err, fs.ErrNotExist):
		return errors.NotFoundError(rel, err)
	case stderrors.Is(err, fs.ErrPermission):
		return errors.PermissionError(rel, err)
	default:
		return errors.Wrap(err, errors.ErrorTypeFile, msg).WithPath(rel)
	}
}
