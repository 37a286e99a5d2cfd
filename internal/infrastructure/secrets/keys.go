package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/kamusiapp/kamusi/internal/infrastructure/storage"
)

// LoadOrCreateKey returns the device's persistent encryption key,
// generating and storing one (base64-encoded raw bytes) on first run.
// The key is random per install, not password-derived.
func LoadOrCreateKey(kv storage.KeyValue, storageKey string) ([]byte, error) {
	encoded, ok, err := kv.Get(storageKey)
	if err != nil {
		return nil, fmt.Errorf("load device key: %w", err)
	}
	if ok {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil || len(key) != KeySize {
			// A mangled key cannot decrypt anything anyway; mint a new
			// one so future saves are protected again.
			return mintKey(kv, storageKey)
		}
		return key, nil
	}
	return mintKey(kv, storageKey)
}

func mintKey(kv storage.KeyValue, storageKey string) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate device key: %w", err)
	}
	if err := kv.Set(storageKey, base64.StdEncoding.EncodeToString(key)); err != nil {
		return nil, fmt.Errorf("store device key: %w", err)
	}
	return key, nil
}
