package cli

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitError(t *testing.T) {
	cause := errors.New("bad config")
	err := NewExitError(ExitConfig, cause)

	assert.Equal(t, "bad config", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "exit status 3", NewExitError(ExitUnavailable, nil).Error())

	code, ok := IsExitError(fmt.Errorf("loading: %w", err))
	assert.True(t, ok, "wrapped ExitError should be found")
	assert.Equal(t, ExitConfig, code)

	_, ok = IsExitError(cause)
	assert.False(t, ok)
	_, ok = IsExitError(nil)
	assert.False(t, ok)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("boom")))
	assert.Equal(t, ExitUnavailable, ExitCode(NewExitError(ExitUnavailable, io.ErrClosedPipe)))
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, HandleExecutionError(nil))
	assert.NoError(t, HandleExecutionError(io.EOF))
	assert.NoError(t, HandleExecutionError(errInterrupted))

	err := HandleExecutionError(errors.New("boom"))
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.EqualError(t, err, "boom")

	kept := NewExitError(ExitConfig, errors.New("bad"))
	assert.Same(t, kept, HandleExecutionError(kept))
}
