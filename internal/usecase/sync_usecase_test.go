package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/repository"
)

// in-memory fakes for the catalog and mirror contracts

type fakeCatalog struct {
	records  []entity.CachedVocab
	countErr error
	fetchErr error
}

// live mirrors the SQL client: tombstones are excluded before counting
// and windowing, so offsets address live rows only.
func (f *fakeCatalog) live() []entity.CachedVocab {
	out := make([]entity.CachedVocab, 0, len(f.records))
	for i := range f.records {
		if !f.records[i].Tombstoned() {
			out = append(out, f.records[i])
		}
	}
	return out
}

func (f *fakeCatalog) Count(ctx context.Context, mode entity.StudyMode, category string) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.live())), nil
}

func (f *fakeCatalog) FetchPage(ctx context.Context, mode entity.StudyMode, category string, offset, limit int) ([]entity.CachedVocab, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	live := f.live()
	if offset >= len(live) {
		return nil, nil
	}
	end := offset + limit
	if end > len(live) {
		end = len(live)
	}
	return live[offset:end], nil
}

type fakeMirror struct {
	replaced map[string][]entity.CachedVocab
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{replaced: make(map[string][]entity.CachedVocab)}
}

func (f *fakeMirror) BulkReplace(ctx context.Context, mode entity.StudyMode, category string, records []entity.CachedVocab) (repository.ReplaceResult, error) {
	if err := ctx.Err(); err != nil {
		return repository.ReplaceResult{}, err
	}
	accepted := 0
	dropped := 0
	kept := []entity.CachedVocab{}
	for i := range records {
		if records[i].Tombstoned() || records[i].Validate() != nil {
			dropped++
			continue
		}
		kept = append(kept, records[i])
		accepted++
	}
	f.replaced[string(mode)+"_"+category] = kept
	return repository.ReplaceResult{Accepted: accepted, Dropped: dropped, Checksum: "test"}, nil
}

func (f *fakeMirror) Query(ctx context.Context, q repository.MirrorQuery) ([]entity.CachedVocab, error) {
	return f.replaced[string(q.Mode)+"_"+q.Category], nil
}

func (f *fakeMirror) Count(ctx context.Context, mode entity.StudyMode, category string) (int64, error) {
	return int64(len(f.replaced[string(mode)+"_"+category])), nil
}

func (f *fakeMirror) Status(ctx context.Context) (repository.MirrorStatus, error) {
	return repository.MirrorStatus{}, nil
}

func (f *fakeMirror) Clear(ctx context.Context) error {
	f.replaced = make(map[string][]entity.CachedVocab)
	return nil
}

func (f *fakeMirror) Close() error { return nil }

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func catalogRecords(n int) []entity.CachedVocab {
	out := make([]entity.CachedVocab, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, entity.CachedVocab{
			ID:         fmt.Sprintf("w%03d", i),
			Mode:       entity.ModeSwahili,
			Term:       fmt.Sprintf("neno%03d", i),
			Difficulty: 1,
			CreatedAt:  int64(1000 + i),
		})
	}
	return out
}

func TestSync_DownloadsAllPages(t *testing.T) {
	catalog := &fakeCatalog{records: catalogRecords(450)}
	mirror := newFakeMirror()
	uc := NewSyncUsecase(catalog, mirror, quietLogger(), 200)

	result, err := uc.Sync(context.Background(), entity.ModeSwahili, "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Fetched != 450 || result.Accepted != 450 || result.Dropped != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if got := len(mirror.replaced["sw_"]); got != 450 {
		t.Fatalf("expected 450 mirrored records, got %d", got)
	}
	if result.SyncedAt == 0 {
		t.Fatal("expected SyncedAt to be stamped")
	}
}

func TestSync_TombstonesDoNotTruncateDownload(t *testing.T) {
	tombstone := entity.CachedVocab{
		ID:         "gone",
		Mode:       entity.ModeSwahili,
		Term:       entity.TombstonePrefix + "neno",
		Difficulty: 1,
		CreatedAt:  1,
	}
	catalog := &fakeCatalog{records: append([]entity.CachedVocab{tombstone}, catalogRecords(3)...)}
	mirror := newFakeMirror()
	uc := NewSyncUsecase(catalog, mirror, quietLogger(), 2)

	result, err := uc.Sync(context.Background(), entity.ModeSwahili, "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	// A deleted record early in the catalog must not shorten a page and
	// end the download; every live record still arrives.
	if result.Fetched != 3 || result.Accepted != 3 {
		t.Fatalf("expected all 3 live records, got %+v", result)
	}
	if got := len(mirror.replaced["sw_"]); got != 3 {
		t.Fatalf("expected 3 mirrored records, got %d", got)
	}
}

func TestSync_CountsDroppedRecords(t *testing.T) {
	records := catalogRecords(3)
	records = append(records, entity.CachedVocab{ID: "bad", Mode: entity.ModeSwahili, Term: "", Difficulty: 1, CreatedAt: 1})
	catalog := &fakeCatalog{records: records}
	mirror := newFakeMirror()
	uc := NewSyncUsecase(catalog, mirror, quietLogger(), 10)

	result, err := uc.Sync(context.Background(), entity.ModeSwahili, "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Accepted != 3 || result.Dropped != 1 {
		t.Fatalf("expected 3 accepted / 1 dropped, got %+v", result)
	}
}

func TestSync_CancelledBeforeReplaceLeavesCacheIntact(t *testing.T) {
	catalog := &fakeCatalog{records: catalogRecords(5)}
	mirror := newFakeMirror()
	mirror.replaced["sw_"] = catalogRecords(2)
	uc := NewSyncUsecase(catalog, mirror, quietLogger(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := uc.Sync(ctx, entity.ModeSwahili, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := len(mirror.replaced["sw_"]); got != 2 {
		t.Fatalf("cancelled sync must not touch the cache, got %d records", got)
	}
}

func TestSync_CatalogFailurePropagates(t *testing.T) {
	catalog := &fakeCatalog{countErr: entity.ErrCatalogUnavailable}
	uc := NewSyncUsecase(catalog, newFakeMirror(), quietLogger(), 10)

	_, err := uc.Sync(context.Background(), entity.ModeSwahili, "")
	if !errors.Is(err, entity.ErrCatalogUnavailable) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

func TestSync_NotifiesSubscribers(t *testing.T) {
	catalog := &fakeCatalog{records: catalogRecords(2)}
	uc := NewSyncUsecase(catalog, newFakeMirror(), quietLogger(), 10)

	var events []SyncResult
	unsubscribe := uc.Subscribe(func(r SyncResult) { events = append(events, r) })

	if _, err := uc.Sync(context.Background(), entity.ModeSwahili, "food"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if events[0].Category != "food" || events[0].Accepted != 2 {
		t.Fatalf("unexpected event: %+v", events[0])
	}

	unsubscribe()
	if _, err := uc.Sync(context.Background(), entity.ModeSwahili, "food"); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if len(events) != 1 {
		t.Fatal("unsubscribed callback must not fire")
	}
}
