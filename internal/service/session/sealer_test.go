package session_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starterdev/guardian-form-backend/internal/service/session"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func TestNewSealerKeyLength(t *testing.T) {
	_, err := session.NewSealer([]byte("short"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")

	_, err = session.NewSealer(testKey())
	assert.NoError(t, err)
}

func TestSealOpenRoundTrip(t *testing.T) {
	sealer, err := session.NewSealer(testKey())
	require.NoError(t, err)

	values := map[string]any{
		"email": "user@example.com",
		"ssn":   "123456789",
		"count": float64(3),
	}

	sealed, err := sealer.Seal(values)
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "example.com")

	opened, err := sealer.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, values, opened)
}

func TestSealFreshNoncePerCall(t *testing.T) {
	sealer, err := session.NewSealer(testKey())
	require.NoError(t, err)

	values := map[string]any{"a": "b"}
	first, err := sealer.Seal(values)
	require.NoError(t, err)
	second, err := sealer.Seal(values)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestOpenRejectsTamperedPayload(t *testing.T) {
	sealer, err := session.NewSealer(testKey())
	require.NoError(t, err)

	sealed, err := sealer.Seal(map[string]any{"a": "b"})
	require.NoError(t, err)

	sealed[len(sealed)-1] ^= 0xFF
	_, err = sealer.Open(sealed)
	assert.Error(t, err)
}

func TestOpenRejectsShortPayload(t *testing.T) {
	sealer, err := session.NewSealer(testKey())
	require.NoError(t, err)

	_, err = sealer.Open([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestOpenRejectsWrongKey(t *testing.T) {
	sealer, err := session.NewSealer(testKey())
	require.NoError(t, err)
	other, err := session.NewSealer(bytes.Repeat([]byte{0x17}, 32))
	require.NoError(t, err)

	sealed, err := sealer.Seal(map[string]any{"a": "b"})
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.Error(t, err)
}
