package cryptox

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateNumericCode(t *testing.T) {
	t.Parallel()

	code, err := GenerateNumericCode(4)
	require.NoError(t, err)
	require.Len(t, code, 4)
	require.Regexp(t, `^[0-9]{4}$`, code)

	_, err = GenerateNumericCode(0)
	require.Error(t, err)
}

func TestGenerateAlphanumericToken(t *testing.T) {
	t.Parallel()

	token, err := GenerateAlphanumericToken(32)
	require.NoError(t, err)
	require.Len(t, token, 32)
	require.Regexp(t, `^[a-zA-Z0-9]{32}$`, token)

	// Two draws colliding on 32 chars would mean a broken random source.
	other, err := GenerateAlphanumericToken(32)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}
