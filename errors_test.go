package docdex_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/docdex"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := docdex.Errorf(docdex.ENOTFOUND, "record %q not found", "test")

	assert.Equal(t, docdex.ENOTFOUND, docdex.ErrorCode(err))
	assert.Equal(t, "record \"test\" not found", docdex.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docdex.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, docdex.EINTERNAL, docdex.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, docdex.ErrorMessage(nil))
}
