// Package secrets implements the at-rest protection for state snapshots:
// authenticated encryption with a per-install key, a tagged obfuscation
// fallback, and classification of stored values.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Stored values carry a structured tag prefix so the decode entry point
// decides the variant exactly once. Values with no known tag are treated
// as legacy plaintext JSON from pre-encryption installs.
const (
	prefixEncrypted  = "enc.v1:"
	prefixObfuscated = "obf.v1:"
)

// Kind discriminates the persisted-value variants.
type Kind int

const (
	KindLegacyPlaintext Kind = iota
	KindEncrypted
	KindObfuscated
)

var (
	ErrBadKeySize   = errors.New("encryption key must be 32 bytes")
	ErrCorruptValue = errors.New("stored value is corrupt")
	ErrDecrypt      = errors.New("decryption failed")
)

// KeySize is the raw key length for the AEAD cipher.
const KeySize = chacha20poly1305.KeySize

// Classify inspects a stored value and returns its variant.
func Classify(raw string) Kind {
	switch {
	case strings.HasPrefix(raw, prefixEncrypted):
		return KindEncrypted
	case strings.HasPrefix(raw, prefixObfuscated):
		return KindObfuscated
	default:
		return KindLegacyPlaintext
	}
}

// Cipher seals and opens snapshot payloads with XChaCha20-Poly1305.
// Each Seal draws a fresh random nonce, stored as a prefix of the
// ciphertext so decryption is self-contained.
type Cipher struct {
	key []byte
}

// NewCipher validates the key and returns a Cipher.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrBadKeySize
	}
	return &Cipher{key: append([]byte(nil), key...)}, nil
}

// Seal encrypts the payload and returns the tagged stored value.
func (c *Cipher) Seal(plain []byte) (string, error) {
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return "", fmt.Errorf("init aead: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)
	return prefixEncrypted + base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value previously produced by Seal.
func (c *Cipher) Open(raw string) ([]byte, error) {
	if Classify(raw) != KindEncrypted {
		return nil, ErrCorruptValue
	}
	sealed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, prefixEncrypted))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	aead, err := chacha20poly1305.NewX(c.key)
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, ErrCorruptValue
	}
	nonce, ct := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plain, nil
}

// obfuscationPad is the rolling XOR pad for the fallback path. This is a
// reversible deterrent against casual inspection, NOT a security control;
// it exists so the store never holds raw plaintext when the AEAD cannot
// be initialized.
var obfuscationPad = []byte("kamusi-obfuscation-pad-v1")

// Obfuscate produces the tagged fallback encoding.
func Obfuscate(plain []byte) string {
	out := make([]byte, len(plain))
	for i, b := range plain {
		out[i] = b ^ obfuscationPad[i%len(obfuscationPad)]
	}
	return prefixObfuscated + base64.StdEncoding.EncodeToString(out)
}

// Deobfuscate reverses Obfuscate.
func Deobfuscate(raw string) ([]byte, error) {
	if Classify(raw) != KindObfuscated {
		return nil, ErrCorruptValue
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, prefixObfuscated))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptValue, err)
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ obfuscationPad[i%len(obfuscationPad)]
	}
	return out, nil
}
