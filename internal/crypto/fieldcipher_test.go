package crypto

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"example.com/agenda/internal/normalize"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := New("unit-test-passphrase", zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New("", zerolog.Nop())
	require.ErrorIs(t, err, ErrMissingKey)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := newTestCipher(t)
	for _, plaintext := range []string{"a", "hola mundo", "correo@example.com", "ñandú 🌱"} {
		stored := c.EncryptField(plaintext)
		require.NotEqual(t, plaintext, stored)
		require.True(t, c.LooksEncrypted(stored))
		require.Equal(t, plaintext, c.DecryptField(stored))
	}
}

func TestEncryptFieldIsNonDeterministic(t *testing.T) {
	c := newTestCipher(t)
	first := c.EncryptField("same input")
	second := c.EncryptField("same input")
	require.NotEqual(t, first, second)
	require.Equal(t, "same input", c.DecryptField(first))
	require.Equal(t, "same input", c.DecryptField(second))
}

func TestEmptyValuePassesThrough(t *testing.T) {
	c := newTestCipher(t)
	require.Equal(t, "", c.EncryptField(""))
	require.Equal(t, "", c.DecryptField(""))
}

func TestDecryptFallbackOnLegacyPlaintext(t *testing.T) {
	c := newTestCipher(t)
	require.Equal(t, "never encrypted", c.DecryptField("never encrypted"))
}

func TestDecryptFallbackOnCorruptCiphertext(t *testing.T) {
	c := newTestCipher(t)
	corrupt := "enc1:not-real-ciphertext"
	require.Equal(t, corrupt, c.DecryptField(corrupt))

	// Tampered but well-formed base64.
	stored := []byte(c.EncryptField("secret"))
	last := len(stored) - 1
	if stored[last] == 'A' {
		stored[last] = 'B'
	} else {
		stored[last] = 'A'
	}
	tampered := string(stored)
	require.Equal(t, tampered, c.DecryptField(tampered))
}

func TestDecryptFallbackOnWrongKey(t *testing.T) {
	first := newTestCipher(t)
	other, err := New("a different passphrase", zerolog.Nop())
	require.NoError(t, err)

	stored := first.EncryptField("secret")
	require.Equal(t, stored, other.DecryptField(stored))
}

func TestContactRoundTrip(t *testing.T) {
	c := newTestCipher(t)
	contacts := []normalize.Contact{
		{To: "a@example.com", CC: "b@example.com"},
		{BCC: "c@example.com"},
	}

	encrypted := c.EncryptContacts(contacts)
	require.True(t, c.LooksEncrypted(encrypted[0].To))
	require.True(t, c.LooksEncrypted(encrypted[0].CC))
	require.Empty(t, encrypted[0].BCC)
	require.True(t, c.LooksEncrypted(encrypted[1].BCC))

	decrypted := c.DecryptContacts(encrypted).([]normalize.Contact)
	require.Equal(t, contacts, decrypted)
}

func TestDecryptContactsPreservesRawShape(t *testing.T) {
	c := newTestCipher(t)
	raw := []any{
		map[string]any{"to": c.EncryptField("a@example.com"), "junk": "kept"},
		"not-a-map",
	}

	got := c.DecryptContacts(raw).([]any)
	first := got[0].(map[string]any)
	require.Equal(t, "a@example.com", first["to"])
	require.Equal(t, "kept", first["junk"])
	require.Equal(t, "not-a-map", got[1])
}

func TestDeriveKeyAcceptsBase64Material(t *testing.T) {
	// 32 zero bytes, base64url without padding.
	key := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	c, err := New(key, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, "x", c.DecryptField(c.EncryptField("x")))
}
