package errors_test

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofileio/pkg/errors"
)

func TestFileIOErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *errors.FileIOError
		want string
	}{
		{
			name: "plain",
			err:  errors.ValidationError("name is required"),
			want: "[validation] name is required",
		},
		{
			name: "with path",
			err:  errors.FileNotFoundError("missing.txt"),
			want: "[file_not_found] file not found: missing.txt",
		},
		{
			name: "wrapped",
			err:  errors.NotFoundError("root", fs.ErrNotExist),
			want: "[not_found] no such file or directory: root: file does not exist",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindsSurviveWrapping(t *testing.T) {
	t.Parallel()

	base := errors.PermissionError("secret", fs.ErrPermission)
	wrapped := fmt.Errorf("listing: %w", base)

	assert.True(t, errors.IsPermission(wrapped))
	assert.False(t, errors.IsNotFound(wrapped))
	assert.Equal(t, errors.ErrorTypePermission, errors.KindOf(wrapped))
	require.ErrorIs(t, wrapped, fs.ErrPermission)

	assert.Equal(t, errors.ErrorTypeUnknown, errors.KindOf(stderrors.New("boom")))
	assert.False(t, errors.IsExists(nil))
}

func TestWithContext(t *testing.T) {
	t.Parallel()

	err := errors.ExistsError("file", "a.txt").WithContext("override", false)

	assert.True(t, errors.IsExists(err))
	assert.Equal(t, false, err.Context["override"])
	assert.Equal(t, "[exists] file already exists: a.txt", err.Error())
}
