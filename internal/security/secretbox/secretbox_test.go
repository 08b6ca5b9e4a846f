package secretbox

import (
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i + 1)
	}
	return raw
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	box, err := New(base64.StdEncoding.EncodeToString(testKey()))
	require.NoError(t, err)

	msg := "clave-app ✓ 1234"
	ct, err := box.Encrypt(PurposeAppPassword, msg)
	require.NoError(t, err)
	assert.NotContains(t, ct, msg)

	pt, err := box.Decrypt(PurposeAppPassword, ct)
	require.NoError(t, err)
	assert.Equal(t, msg, pt)
}

func TestEncrypt_NonceIsRandom(t *testing.T) {
	box, err := New(hex.EncodeToString(testKey()))
	require.NoError(t, err)

	a, err := box.Encrypt(PurposeAPISecret, "same")
	require.NoError(t, err)
	b, err := box.Encrypt(PurposeAPISecret, "same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDecrypt_RejectsOtherPurpose(t *testing.T) {
	box, err := New(string(testKey()))
	require.NoError(t, err)

	ct, err := box.Encrypt(PurposeAPISecret, "secret")
	require.NoError(t, err)

	_, err = box.Decrypt(PurposeAppPassword, ct)
	assert.Error(t, err)
}

func TestDecrypt_DetectsTamper(t *testing.T) {
	box, err := New(base64.RawStdEncoding.EncodeToString(testKey()))
	require.NoError(t, err)

	ct, err := box.Encrypt(PurposeAppPassword, "top secret")
	require.NoError(t, err)

	parts := strings.Split(ct, "|")
	require.Len(t, parts, 2)
	bs, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	bs[0] ^= 0x01
	corrupted := parts[0] + "|" + base64.StdEncoding.EncodeToString(bs)

	_, err = box.Decrypt(PurposeAppPassword, corrupted)
	assert.Error(t, err)

	_, err = box.Decrypt(PurposeAppPassword, "no-separator")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestNew_InvalidKey(t *testing.T) {
	_, err := New("short")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
