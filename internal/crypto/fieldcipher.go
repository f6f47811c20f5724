// Package crypto implements field-level encryption for sensitive document
// values. Ciphertext is AES-256-GCM, stored as a versioned prefix plus the
// base64url-encoded nonce and sealed payload, so a stored value can be
// recognized as ciphertext without attempting decryption.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"example.com/agenda/internal/normalize"
	"example.com/agenda/internal/observability"
)

// ciphertextPrefix versions the at-rest format. Values without it are
// treated as legacy plaintext written before encryption was introduced.
const ciphertextPrefix = "enc1:"

// ErrMissingKey indicates the cipher key was not configured. This is a
// startup failure, never a per-request one.
var ErrMissingKey = errors.New("cipher key is not configured")

// Cipher encrypts and decrypts individual field values with a single
// process-wide key. Safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
	log  zerolog.Logger
}

// New builds a Cipher from the configured key. The key may be a
// base64-encoded 32-byte value; any other non-empty string is accepted as
// a passphrase and run through SHA-256.
func New(key string, log zerolog.Logger) (*Cipher, error) {
	if key == "" {
		return nil, ErrMissingKey
	}
	material := deriveKey(key)
	block, err := aes.NewCipher(material)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead, log: log}, nil
}

func deriveKey(key string) []byte {
	for _, enc := range []*base64.Encoding{
		base64.RawURLEncoding, base64.URLEncoding, base64.StdEncoding,
	} {
		if raw, err := enc.DecodeString(key); err == nil && len(raw) == 32 {
			return raw
		}
	}
	sum := sha256.Sum256([]byte(key))
	return sum[:]
}

// EncryptField encrypts a single value. Empty input is returned unchanged.
// Encryption is non-deterministic: the same plaintext produces different
// ciphertext on every call.
func (c *Cipher) EncryptField(plaintext string) string {
	if plaintext == "" {
		return plaintext
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		// rand.Read only fails when the OS entropy source is broken.
		panic(err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return ciphertextPrefix + base64.RawURLEncoding.EncodeToString(sealed)
}

// DecryptField attempts authenticated decryption and falls back to the
// stored value on any failure. The fallback keeps documents written
// before encryption was introduced readable; corrupt ciphertext takes the
// same path but is counted and logged separately.
func (c *Cipher) DecryptField(stored string) string {
	if stored == "" {
		return stored
	}
	if !c.LooksEncrypted(stored) {
		observability.RecordDecryptFallback(observability.FallbackPlaintext)
		return stored
	}
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(stored, ciphertextPrefix))
	if err != nil || len(raw) <= c.aead.NonceSize() {
		c.warnCorrupt(err)
		return stored
	}
	nonce, sealed := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		c.warnCorrupt(err)
		return stored
	}
	return string(plaintext)
}

func (c *Cipher) warnCorrupt(err error) {
	observability.RecordDecryptFallback(observability.FallbackCorrupt)
	c.log.Warn().Err(err).Msg("stored value carries the ciphertext prefix but failed decryption")
}

// LooksEncrypted reports whether a stored value carries the at-rest
// ciphertext format. It does not prove the value decrypts under the
// current key.
func (c *Cipher) LooksEncrypted(stored string) bool {
	return strings.HasPrefix(stored, ciphertextPrefix)
}

// EncryptContacts encrypts the role values of every contact record.
func (c *Cipher) EncryptContacts(contacts []normalize.Contact) []normalize.Contact {
	out := make([]normalize.Contact, len(contacts))
	for i, ct := range contacts {
		out[i] = normalize.Contact{
			To:  c.EncryptField(ct.To),
			CC:  c.EncryptField(ct.CC),
			BCC: c.EncryptField(ct.BCC),
		}
	}
	return out
}

// DecryptContacts decrypts role values inside a raw contact-list value
// without altering its shape. It runs before contact normalization on the
// read path: encryption operates on the role strings, so unknown keys and
// stray elements must survive until the normalizer drops them.
func (c *Cipher) DecryptContacts(v any) any {
	switch list := v.(type) {
	case []normalize.Contact:
		out := make([]normalize.Contact, len(list))
		for i, ct := range list {
			out[i] = normalize.Contact{
				To:  c.DecryptField(ct.To),
				CC:  c.DecryptField(ct.CC),
				BCC: c.DecryptField(ct.BCC),
			}
		}
		return out
	case []any:
		out := make([]any, len(list))
		for i, el := range list {
			if m, ok := el.(map[string]any); ok {
				copied := make(map[string]any, len(m))
				for k, val := range m {
					copied[k] = val
				}
				for _, role := range []string{"to", "cc", "bcc"} {
					if s, ok := copied[role].(string); ok {
						copied[role] = c.DecryptField(s)
					}
				}
				out[i] = copied
				continue
			}
			out[i] = el
		}
		return out
	default:
		return v
	}
}
