package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errSentinel = stderrors.New("sentinel")

func TestWrap_KeepsCode(t *testing.T) {
	base := InvalidInputf(errSentinel, "bad sample")
	wrapped := Wrap(base, "describe failed")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, errSentinel))
	assert.Equal(t, "describe failed: bad sample: sentinel", wrapped.Error())
}

func TestWrap_PlainErrorIsInternal(t *testing.T) {
	err := Wrapf(fmt.Errorf("boom"), "step %d", 3)
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Equal(t, "step 3: boom", err.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeConfigInvalid, InvalidInput("unknown method"))
	assert.True(t, HasCode(err, CodeConfigInvalid))
	assert.Equal(t, "unknown method", err.Error())

	assert.Equal(t, CodeNotFound, GetCode(WithCode(CodeNotFound, fmt.Errorf("gone"))))
}

func TestGetCode_Unknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.False(t, IsAppError(fmt.Errorf("plain")))
	assert.True(t, IsAppError(fmt.Errorf("outer: %w", NotFound("comparison"))))
}
