package errors_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sleuthgo/tsk/errors"
)

func TestTskErrorWithMessage(t *testing.T) {
	newErr := errors.ErrNotFound.WithMessage("/foo/bar")
	assert.Equal(t, "not found: /foo/bar", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, errors.ErrNotFound)
}

func TestTskErrorWrap(t *testing.T) {
	originalErr := stderrors.New("short read")
	newErr := errors.ErrRead.WrapError(originalErr)
	expectedMessage := "image read failed: short read"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
}

func TestCustomDriverErrorChaining(t *testing.T) {
	base := errors.ErrCorrupted.WithMessage("extent references unknown file")
	chained := base.WithMessage("directory 42")

	assert.Contains(t, chained.Error(), "corrupted filesystem structure")
	assert.Contains(t, chained.Error(), "extent references unknown file")
	assert.Contains(t, chained.Error(), "directory 42")
	assert.ErrorIs(t, chained, errors.ErrCorrupted)
}
