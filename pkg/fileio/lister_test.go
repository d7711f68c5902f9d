package fileio_test

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofileio/pkg/errors"
	"gofileio/pkg/fileio"
)

func TestListSubdirectories(t *testing.T) {
	t.Parallel()

	mem := memTree(t, "root/a/", "root/b/inner/", "root/file.txt")
	resolver, err := fileio.NewResolver(memBase)
	require.NoError(t, err)
	lister := fileio.NewLister(mem, resolver)

	dirs, err := lister.ListSubdirectories("root")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, dirs)

	entries, err := lister.ListEntries("root")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b", "file.txt"}, entries)

	empty, err := lister.ListSubdirectories("root/a")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListSubdirectoriesErrors(t *testing.T) {
	t.Parallel()

	mem := memTree(t, "root/file.txt")
	resolver, err := fileio.NewResolver(memBase)
	require.NoError(t, err)
	lister := fileio.NewLister(mem, resolver)

	_, err = lister.ListSubdirectories("missing")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "missing")

	_, err = lister.ListSubdirectories("root/file.txt")
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeFile, errors.KindOf(err))
}
