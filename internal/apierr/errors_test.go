package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("missing %s", "thing")))
	assert.False(t, IsNotFound(Storage(fmt.Errorf("boom"))))
	assert.False(t, IsNotFound(errors.New("plain error")))
}

func TestWrappedErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := IO(cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "disk full")
}
