package hasher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	dErrors "scriptorium/pkg/domain-errors"
)

func TestBcrypt(t *testing.T) {
	h := New(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, h.Verify(hash, "correct horse"))

	err = h.Verify(hash, "wrong horse")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	err = h.Verify("not-a-hash", "x")
	require.Error(t, err)
	assert.False(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestBcrypt_Rejects(t *testing.T) {
	h := New(bcrypt.MinCost)

	_, err := h.Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))

	_, err = h.Hash(strings.Repeat("x", 73))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
