package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCryptoRandomBytes(t *testing.T) {
	t.Run("Generate correct length", func(t *testing.T) {
		bytes, err := CryptoRandomBytes(20)
		require.NoError(t, err)
		assert.Len(t, bytes, 20)
	})

	t.Run("Generate unique values", func(t *testing.T) {
		bytes1, err := CryptoRandomBytes(20)
		require.NoError(t, err)

		bytes2, err := CryptoRandomBytes(20)
		require.NoError(t, err)

		assert.NotEqual(t, bytes1, bytes2, "Random bytes should not be identical")
	})
}

func TestRandomHex(t *testing.T) {
	t.Run("Generate correct length", func(t *testing.T) {
		str, err := RandomHex(32)
		require.NoError(t, err)
		assert.Len(t, str, 64)
	})

	t.Run("Generate hex characters only", func(t *testing.T) {
		str, err := RandomHex(32)
		require.NoError(t, err)

		for _, c := range str {
			assert.True(t, (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f'),
				"Character '%c' is not a valid hex digit", c)
		}
	})
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, SecureCompare("learning-client-secret", "learning-client-secret"))
	assert.False(t, SecureCompare("learning-client-secret", "learning-client-secreT"))
	assert.False(t, SecureCompare("short", "much-longer-value"))
	assert.False(t, SecureCompare("secret", ""))
}

func TestS256Challenge(t *testing.T) {
	// RFC 7636 Appendix B
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", S256Challenge(verifier))
}
