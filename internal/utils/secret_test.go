package utils

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) *[32]byte {
	t.Helper()
	k, err := ParseSecretKey(base64.StdEncoding.EncodeToString(make([]byte, 32)))
	require.NoError(t, err)
	return k
}

func TestSealOpen(t *testing.T) {
	key := testKey(t)
	sealed, err := SealString(key, "magento-token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "magento-token")

	plain, err := OpenString(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, "magento-token", plain)
}

func TestOpenString_WrongKey(t *testing.T) {
	sealed, err := SealString(testKey(t), "x")
	require.NoError(t, err)

	other := [32]byte{1}
	_, err = OpenString(&other, sealed)
	assert.Error(t, err)
}

func TestParseSecretKey_BadLength(t *testing.T) {
	_, err := ParseSecretKey(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.ErrorIs(t, err, ErrSecretKey)
}
