package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/infrastructure/storage"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func sampleState() entity.AppState {
	state := entity.NewDefaultState(1000)
	state.Items = []entity.VocabItem{{
		ID:      "item-1",
		DeckID:  entity.DefaultDeckID,
		Term:    "nyumba",
		Meaning: "집",
		Srs:     entity.Srs{DueAt: 1000, Ease: 2.2},
	}}
	state.Wrong = []entity.WrongNoteItem{{ItemID: "item-1", WrongCount: 2, LastWrongAt: 900}}
	return state
}

func TestSaveLoadRoundTrip(t *testing.T) {
	kv := storage.NewMemoryStore()
	store, err := NewSnapshotStore(kv, testLogger())
	require.NoError(t, err)

	want := sampleState()
	require.NoError(t, store.Save(want))

	// Stored blob is encrypted, not inspectable.
	raw, ok, err := kv.Get(StateKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(raw, "enc.v1:"))
	assert.NotContains(t, raw, "nyumba")

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestLoadAfterRestart(t *testing.T) {
	kv := storage.NewMemoryStore()
	store, err := NewSnapshotStore(kv, testLogger())
	require.NoError(t, err)
	want := sampleState()
	require.NoError(t, store.Save(want))

	// Fresh store over the same kv simulates a process restart with an
	// empty in-memory key cache; the persisted device key must suffice.
	restarted, err := NewSnapshotStore(kv, testLogger())
	require.NoError(t, err)
	got, err := restarted.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	sync := restarted.LoadSync()
	require.NotNil(t, sync)
	assert.Equal(t, want, *sync)
}

func TestLoadNothingStored(t *testing.T) {
	store, err := NewSnapshotStore(storage.NewMemoryStore(), testLogger())
	require.NoError(t, err)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got, "missing snapshot is not an error")
	assert.Nil(t, store.LoadSync())
}

func TestLoadCorruptCiphertext(t *testing.T) {
	kv := storage.NewMemoryStore()
	store, err := NewSnapshotStore(kv, testLogger())
	require.NoError(t, err)
	require.NoError(t, store.Save(sampleState()))

	raw, _, err := kv.Get(StateKey)
	require.NoError(t, err)
	flipped := []byte(raw)
	i := len(flipped) - 3
	flipped[i] ^= 0x01
	require.NoError(t, kv.Set(StateKey, string(flipped)))

	got, err := store.Load(context.Background())
	require.NoError(t, err, "corruption is recovered as no-prior-state, not an error")
	assert.Nil(t, got)
	assert.Nil(t, store.LoadSync())
}

func TestLoadLegacyPlaintext(t *testing.T) {
	kv := storage.NewMemoryStore()

	// Pre-encryption installs stored the bare state as JSON.
	legacy := sampleState()
	blob, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, kv.Set(StateKey, string(blob)))

	store, err := NewSnapshotStore(kv, testLogger())
	require.NoError(t, err)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, legacy.Items, got.Items)
}

func TestLoadVersionTaggedLegacyWrapper(t *testing.T) {
	kv := storage.NewMemoryStore()
	blob, err := json.Marshal(map[string]any{"version": 99, "state": map[string]any{}})
	require.NoError(t, err)
	require.NoError(t, kv.Set(StateKey, string(blob)))

	store, err := NewSnapshotStore(kv, testLogger())
	require.NoError(t, err)
	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got, "unknown snapshot version is not usable")
}

func TestLoadSurfacesStorageFailure(t *testing.T) {
	kv := &failingStore{}
	store := &SnapshotStore{kv: kv, logger: testLogger()}

	_, err := store.Load(context.Background())
	require.Error(t, err, "genuine I/O failure must propagate")
	assert.Nil(t, store.LoadSync(), "sync path still never fails")
}

type failingStore struct{}

func (f *failingStore) Get(string) (string, bool, error) { return "", false, errors.New("quota") }
func (f *failingStore) Set(string, string) error         { return errors.New("quota") }
func (f *failingStore) Delete(string) error              { return nil }
