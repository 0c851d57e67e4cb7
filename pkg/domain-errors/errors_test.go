package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodes(t *testing.T) {
	t.Run("new carries its code", func(t *testing.T) {
		err := New(CodeConflict, "already exists")
		assert.True(t, HasCode(err, CodeConflict))
		assert.Equal(t, CodeConflict, CodeOf(err))
		assert.Equal(t, "already exists", err.Error())
	})

	t.Run("wrap keeps the cause reachable", func(t *testing.T) {
		cause := errors.New("redis down")
		err := Wrap(cause, CodeInfrastructure, "cache set failed")
		require.Error(t, err)
		assert.True(t, Is(err, cause))
		assert.True(t, HasCode(err, CodeInfrastructure))
		assert.Equal(t, "cache set failed: redis down", err.Error())
	})

	t.Run("nested codes are all visible", func(t *testing.T) {
		inner := New(CodeSerialization, "bad payload")
		outer := Wrap(inner, CodeInternal, "publish failed")
		assert.True(t, HasCode(outer, CodeInternal))
		assert.True(t, HasCode(outer, CodeSerialization))
		assert.False(t, HasCode(outer, CodeNotFound))
		assert.Equal(t, CodeInternal, CodeOf(outer))
	})

	t.Run("wrap of nil is nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}
