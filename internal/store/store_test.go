package store

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusiapp/kamusi/internal/entity"
)

type recordingPersister struct {
	saves []entity.AppState
}

func (p *recordingPersister) Save(state entity.AppState) error {
	p.saves = append(p.saves, state)
	return nil
}

func testClock() func() time.Time {
	t := time.UnixMilli(1000)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(p Persister) *Store {
	logger := logrus.New()
	return New(entity.NewDefaultState(1000), logger, WithPersister(p), WithClock(testClock()))
}

func TestStore_SaveGatedUntilHydrated(t *testing.T) {
	persister := &recordingPersister{}
	s := newTestStore(persister)

	s.Dispatch(AddDeck{Name: "Pre-hydration"})
	assert.Empty(t, persister.saves, "saves must not run before hydration")
	assert.False(t, s.Hydrated())

	loaded := entity.NewDefaultState(500)
	s.Dispatch(Hydrate{State: loaded})
	require.True(t, s.Hydrated())
	require.Len(t, persister.saves, 1, "hydration itself is persisted")

	// The interim deck created before hydration is gone: the
	// authoritative load fully replaces the provisional state.
	assert.Len(t, s.State().Decks, 2)

	s.Dispatch(AddDeck{Name: "Post-hydration"})
	require.Len(t, persister.saves, 2)
	last := persister.saves[len(persister.saves)-1]
	assert.Equal(t, "Post-hydration", last.Decks[len(last.Decks)-1].Name)
}

func TestStore_DispatchAssignsIDs(t *testing.T) {
	s := newTestStore(nil)
	state := s.Dispatch(AddItem{Draft: entity.ItemDraft{DeckID: entity.DefaultDeckID, Term: "jambo", Meaning: "안녕"}})
	require.Len(t, state.Items, 1)
	assert.NotEmpty(t, state.Items[0].ID)

	state = s.Dispatch(AddDeck{Name: "Misemo"})
	assert.NotEmpty(t, state.Decks[len(state.Decks)-1].ID)
}

func TestStore_Subscribe(t *testing.T) {
	s := newTestStore(nil)

	var seen []entity.AppState
	unsubscribe := s.Subscribe(func(state entity.AppState) {
		seen = append(seen, state)
	})

	s.Dispatch(AddDeck{Name: "One"})
	require.Len(t, seen, 1)
	assert.Equal(t, s.State(), seen[0])

	unsubscribe()
	s.Dispatch(AddDeck{Name: "Two"})
	assert.Len(t, seen, 1, "unsubscribed callbacks stop firing")
}

// blockingPersister stalls inside Save once armed, to hold one snapshot
// write open while later dispatches commit.
type blockingPersister struct {
	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
	saves   []entity.AppState
}

func (p *blockingPersister) Save(state entity.AppState) error {
	p.mu.Lock()
	armed := p.armed
	p.armed = false
	p.mu.Unlock()
	if armed {
		p.entered <- struct{}{}
		<-p.release
	}
	p.mu.Lock()
	p.saves = append(p.saves, state)
	p.mu.Unlock()
	return nil
}

func (p *blockingPersister) deckCounts() []int {
	p.mu.Lock()
	defer p.mu.Unlock()
	counts := make([]int, 0, len(p.saves))
	for _, s := range p.saves {
		counts = append(counts, len(s.Decks))
	}
	return counts
}

func TestStore_StalledSaveNeverLandsAfterNewerOne(t *testing.T) {
	p := &blockingPersister{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	s := newTestStore(p)
	s.Dispatch(Hydrate{State: entity.NewDefaultState(0)})

	p.mu.Lock()
	p.armed = true
	p.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Dispatch(AddDeck{Name: "Nomino"})
	}()
	// The first save is now stalled inside the persister.
	<-p.entered

	go func() {
		defer wg.Done()
		s.Dispatch(AddDeck{Name: "Vitenzi"})
	}()
	// The second dispatch commits its transition even while the first
	// save is stalled; its own save queues behind the persist lock.
	require.Eventually(t, func() bool {
		return len(s.State().Decks) == 4
	}, time.Second, time.Millisecond)

	close(p.release)
	wg.Wait()

	counts := p.deckCounts()
	require.NotEmpty(t, counts)
	assert.Equal(t, 4, counts[len(counts)-1], "newest snapshot must persist last")
	for i := 1; i < len(counts); i++ {
		assert.LessOrEqual(t, counts[i-1], counts[i], "snapshots must reach the persister in version order")
	}
}

func TestStore_DispatchOrderIsStrict(t *testing.T) {
	s := newTestStore(nil)
	s.Dispatch(Hydrate{State: entity.NewDefaultState(0)})

	for i := 0; i < 5; i++ {
		s.Dispatch(AddItem{Draft: entity.ItemDraft{DeckID: entity.DefaultDeckID, Term: "t", Meaning: "m"}})
	}
	state := s.State()
	require.Len(t, state.Items, 5)
	for i := 1; i < len(state.Items); i++ {
		assert.GreaterOrEqual(t, state.Items[i-1].CreatedAt, state.Items[i].CreatedAt, "newest first")
	}
}
