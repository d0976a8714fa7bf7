package common

import (
	stderrors "errors"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatErrorIsMatchable(t *testing.T) {
	err := errors.Wrap(NewFormatError("container.magic", NoIndex, "got 0x%08x", 0x1234), "decode")

	var fe *FormatError
	require.True(t, stderrors.As(err, &fe))
	assert.Equal(t, "container.magic", fe.Check)
	assert.Equal(t, NoIndex, fe.Index)
	assert.Contains(t, err.Error(), "container.magic")
	assert.Contains(t, err.Error(), "0x00001234")
}

func TestCheckIndex(t *testing.T) {
	assert.NoError(t, CheckIndex("primitive.material", 0, 2, 3))

	err := CheckIndex("primitive.material", 4, 3, 3)
	var re *ReferenceError
	require.True(t, stderrors.As(err, &re))
	assert.Equal(t, 4, re.Index)
	assert.Equal(t, 3, re.Target)
	assert.Contains(t, err.Error(), "primitive.material[4]")

	assert.Error(t, CheckIndex("node.child", 0, -1, 3))
}

func TestResourceCreationErrorUnwraps(t *testing.T) {
	cause := stderrors.New("out of memory")
	err := NewResourceCreationError("buffer_view", 7, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Cause(err))
	assert.Nil(t, NewResourceCreationError("buffer_view", 7, nil))
}
