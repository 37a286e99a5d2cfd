// Package persistence serializes the whole AppState to the local
// key-value store, encrypted at rest, and reconstructs it on startup.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/infrastructure/secrets"
	"github.com/kamusiapp/kamusi/internal/infrastructure/storage"
)

const (
	// StateKey holds the entire snapshot blob; KeyKey holds the
	// device's base64-encoded encryption key.
	StateKey = "kamusi.state"
	KeyKey   = "kamusi.state.key"

	// SnapshotVersion tags the JSON layout. Unknown versions are
	// rejected, surfacing as "no usable snapshot".
	SnapshotVersion = 1
)

// snapshot is the version-tagged persisted encoding of AppState.
type snapshot struct {
	Version int             `json:"version"`
	State   entity.AppState `json:"state"`
}

// SnapshotStore implements repository.StateRepository over a KeyValue
// store and the secrets envelope.
type SnapshotStore struct {
	kv        storage.KeyValue
	cipher    *secrets.Cipher
	obfuscate bool
	logger    logrus.FieldLogger
}

// NewSnapshotStore loads (or mints) the device key and prepares the
// cipher. If the AEAD cannot be initialized the store degrades to the
// tagged obfuscation path instead of writing plaintext.
func NewSnapshotStore(kv storage.KeyValue, logger logrus.FieldLogger) (*SnapshotStore, error) {
	s := &SnapshotStore{kv: kv, logger: logger}

	key, err := secrets.LoadOrCreateKey(kv, KeyKey)
	if err != nil {
		return nil, fmt.Errorf("prepare device key: %w", err)
	}
	cipher, err := secrets.NewCipher(key)
	if err != nil {
		logger.WithError(err).Warn("aead unavailable, falling back to obfuscated storage")
		s.obfuscate = true
		return s, nil
	}
	s.cipher = cipher
	return s, nil
}

// LoadSync is the best-effort read used to paint an initial screen
// before the authoritative load completes. It never fails: any missing
// key, decode error or decrypt error yields nil.
func (s *SnapshotStore) LoadSync() *entity.AppState {
	raw, ok, err := s.kv.Get(StateKey)
	if err != nil || !ok {
		return nil
	}
	state, err := s.decode(raw)
	if err != nil {
		return nil
	}
	return state
}

// Load is the authoritative load. It resolves (nil, nil) when nothing
// usable is stored — the documented "no prior state" signal — and only
// errors on genuine storage I/O failure.
func (s *SnapshotStore) Load(ctx context.Context) (*entity.AppState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, ok, err := s.kv.Get(StateKey)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if !ok {
		return nil, nil
	}
	state, err := s.decode(raw)
	if err != nil {
		// Recurring corruption must stay visible; the caller seeds a
		// fresh state but the loss is logged, not swallowed.
		s.logger.WithError(err).Error("stored snapshot not recoverable, seeding fresh state")
		return nil, nil
	}
	return state, nil
}

// Save serializes, protects and writes the snapshot. Safe to call on
// every state change; the whole-state encrypt is cheap at this cadence.
func (s *SnapshotStore) Save(state entity.AppState) error {
	plain, err := json.Marshal(snapshot{Version: SnapshotVersion, State: state})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	var raw string
	if s.obfuscate || s.cipher == nil {
		raw = secrets.Obfuscate(plain)
	} else {
		raw, err = s.cipher.Seal(plain)
		if err != nil {
			return fmt.Errorf("seal snapshot: %w", err)
		}
	}
	if err := s.kv.Set(StateKey, raw); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// decode resolves the stored variant exactly once, then falls back
// through the chain encrypted → obfuscated → legacy plaintext.
func (s *SnapshotStore) decode(raw string) (*entity.AppState, error) {
	var (
		plain []byte
		err   error
	)
	switch secrets.Classify(raw) {
	case secrets.KindEncrypted:
		if s.cipher == nil {
			return nil, secrets.ErrDecrypt
		}
		plain, err = s.cipher.Open(raw)
	case secrets.KindObfuscated:
		plain, err = secrets.Deobfuscate(raw)
	case secrets.KindLegacyPlaintext:
		plain = []byte(raw)
	}
	if err != nil {
		return nil, err
	}
	return unmarshalSnapshot(plain)
}

// unmarshalSnapshot accepts the current version-tagged layout and the
// pre-versioning bare AppState from legacy installs.
func unmarshalSnapshot(plain []byte) (*entity.AppState, error) {
	var snap snapshot
	if err := json.Unmarshal(plain, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	switch snap.Version {
	case SnapshotVersion:
		return &snap.State, nil
	case 0:
		// Legacy shape: the state fields live at the top level.
		var legacy entity.AppState
		if err := json.Unmarshal(plain, &legacy); err != nil {
			return nil, fmt.Errorf("parse legacy snapshot: %w", err)
		}
		if legacy.Decks == nil && legacy.Items == nil {
			return nil, fmt.Errorf("%w: unrecognized layout", entity.ErrSnapshotVersion)
		}
		return &legacy, nil
	default:
		return nil, fmt.Errorf("%w: %d", entity.ErrSnapshotVersion, snap.Version)
	}
}
