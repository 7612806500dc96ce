package errclass_test

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/rp-shift-tracker/internal/errclass"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := errclass.ErrParse.WithMessagef("line %d: bad timestamp", 3)
	assert.True(t, errors.Is(err, errclass.ErrParse))
	assert.False(t, errors.Is(err, errclass.ErrIO))
	assert.Equal(t, "E_PARSE: line 3: bad timestamp", err.Error())
}

func TestErrorWrapKeepsCause(t *testing.T) {
	err := fmt.Errorf("load: %w", errclass.ErrIO.WithMessage("read log").Wrap(fs.ErrPermission))
	assert.True(t, errors.Is(err, errclass.ErrIO))
	assert.True(t, errors.Is(err, fs.ErrPermission))
	assert.Contains(t, err.Error(), "E_IO: read log")
}

func TestJoinedErrorsMatch(t *testing.T) {
	err := errors.Join(
		errclass.ErrParse.WithMessage("line 2"),
		errclass.ErrParse.WithMessage("line 5"),
	)
	assert.True(t, errors.Is(err, errclass.ErrParse))
	assert.False(t, errors.Is(err, errclass.ErrValidation))
}

func TestBareKindMessage(t *testing.T) {
	assert.Equal(t, "E_VALIDATION", errclass.ErrValidation.Error())
}
