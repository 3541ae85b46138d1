package linkml

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorFormatsMessage(t *testing.T) {
	err := newError(ErrElementNotFound, "class %q not found", "Person")
	assert.Equal(t, `element_not_found: class "Person" not found`, err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestWrapErrorIncludesUnderlyingError(t *testing.T) {
	underlying := errors.New("boom")
	err := wrapError(ErrServiceError, underlying, "loading %q", "schema.yaml")
	assert.Equal(t, `service_error: loading "schema.yaml": boom`, err.Error())
	assert.Same(t, underlying, err.Unwrap())
}

func TestIsCodeMatchesDirectError(t *testing.T) {
	err := newError(ErrCircularDependency, "cycle at %q", "A")
	assert.True(t, IsCode(err, ErrCircularDependency))
	assert.False(t, IsCode(err, ErrCacheError))
}

func TestIsCodeUnwrapsWrappedErrors(t *testing.T) {
	base := newError(ErrTimeoutError, "expression evaluation timed out")
	wrapped := fmt.Errorf("validating class Person: %w", base)
	assert.True(t, IsCode(wrapped, ErrTimeoutError))
}

func TestIsCodeReturnsFalseForUnrelatedError(t *testing.T) {
	assert.False(t, IsCode(errors.New("plain error"), ErrServiceError))
}
