package cartcodec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	separator = "."
	keyLen    = 32

	// MinIterations is the floor for the KDF round count. The derived key only
	// slows casual tampering; authenticity comes from the GCM tag and price
	// truth comes from reconciliation.
	MinIterations = 100000
)

// Codec seals JSON-serializable values into opaque envelope strings using
// AES-256-GCM under a PBKDF2-derived key.
type Codec struct {
	aead cipher.AEAD
}

// New derives the envelope key once and returns a ready codec.
func New(secret, salt string, iterations int) (*Codec, error) {
	if secret == "" {
		return nil, fmt.Errorf("envelope secret is required")
	}
	if salt == "" {
		return nil, fmt.Errorf("envelope salt is required")
	}
	if iterations < MinIterations {
		return nil, fmt.Errorf("kdf iterations must be at least %d, got %d", MinIterations, iterations)
	}

	key := pbkdf2.Key([]byte(secret), []byte(salt), iterations, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// Encode seals the value into "base64url(nonce).base64url(ciphertext)".
// Returns the empty string on any internal failure; callers treat empty as
// "nothing to persist".
func (c *Codec) Encode(value any) string {
	payload, err := json.Marshal(value)
	if err != nil {
		return ""
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return ""
	}

	sealed := c.aead.Seal(nil, nonce, payload, nil)
	return base64.RawURLEncoding.EncodeToString(nonce) + separator + base64.RawURLEncoding.EncodeToString(sealed)
}

// Decode opens an envelope produced by Encode into dest. It reports false on
// any failure: wrong part count, bad base64, authentication mismatch, or
// invalid JSON. This is the single recovery boundary for corrupt, tampered,
// or foreign-format envelopes.
func (c *Codec) Decode(encoded string, dest any) bool {
	parts := strings.Split(encoded, separator)
	if len(parts) != 2 {
		return false
	}

	nonce, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return false
	}
	sealed, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	payload, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return false
	}

	return json.Unmarshal(payload, dest) == nil
}
