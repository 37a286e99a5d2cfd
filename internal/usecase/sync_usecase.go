package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/repository"
)

// SyncResult reports one completed mirror download.
type SyncResult struct {
	Mode     entity.StudyMode
	Category string
	Fetched  int
	Accepted int
	Dropped  int
	SyncedAt int64
}

// SyncUsecase downloads (mode, category) slices of the remote catalog
// into the offline mirror.
type SyncUsecase interface {
	Sync(ctx context.Context, mode entity.StudyMode, category string) (SyncResult, error)
	Status(ctx context.Context) (repository.MirrorStatus, error)
	ClearCache(ctx context.Context) error
	Subscribe(fn func(SyncResult)) func()
}

// NewSyncUsecase wires the catalog client and mirror store.
func NewSyncUsecase(catalog repository.CatalogClient, mirror repository.MirrorStore, logger logrus.FieldLogger, pageSize int) SyncUsecase {
	if pageSize <= 0 {
		pageSize = 200
	}
	return &syncUsecase{
		catalog:  catalog,
		mirror:   mirror,
		logger:   logger,
		pageSize: pageSize,
		clock:    time.Now,
		subs:     make(map[int]func(SyncResult)),
	}
}

type syncUsecase struct {
	catalog  repository.CatalogClient
	mirror   repository.MirrorStore
	logger   logrus.FieldLogger
	pageSize int
	clock    func() time.Time

	mu      sync.Mutex
	subs    map[int]func(SyncResult)
	nextSub int
}

// Sync fetches the whole (mode, category) slice page by page, then swaps
// it into the mirror in one atomic replace. Cancelling the context before
// the replace leaves the previously cached snapshot untouched; the
// download is all-or-nothing per batch.
func (u *syncUsecase) Sync(ctx context.Context, mode entity.StudyMode, category string) (SyncResult, error) {
	result := SyncResult{Mode: mode, Category: category}

	total, err := u.catalog.Count(ctx, mode, category)
	if err != nil {
		return result, fmt.Errorf("count catalog: %w", err)
	}

	records := make([]entity.CachedVocab, 0, total)
	for offset := 0; ; offset += u.pageSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		page, err := u.catalog.FetchPage(ctx, mode, category, offset, u.pageSize)
		if err != nil {
			return result, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		records = append(records, page...)
		if len(page) < u.pageSize {
			break
		}
	}
	result.Fetched = len(records)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	replace, err := u.mirror.BulkReplace(ctx, mode, category, records)
	if err != nil {
		return result, fmt.Errorf("replace mirror slice: %w", err)
	}
	result.Accepted = replace.Accepted
	result.Dropped = replace.Dropped
	result.SyncedAt = u.clock().UnixMilli()

	if result.Dropped > 0 {
		u.logger.WithFields(logrus.Fields{
			"mode":     mode,
			"category": category,
			"dropped":  result.Dropped,
		}).Warn("sync dropped invalid records")
	}
	u.logger.WithFields(logrus.Fields{
		"mode":     mode,
		"category": category,
		"accepted": result.Accepted,
	}).Info("mirror slice synced")

	u.notify(result)
	return result, nil
}

func (u *syncUsecase) Status(ctx context.Context) (repository.MirrorStatus, error) {
	return u.mirror.Status(ctx)
}

func (u *syncUsecase) ClearCache(ctx context.Context) error {
	return u.mirror.Clear(ctx)
}

// Subscribe registers a callback fired exactly once per successful bulk
// replace, and returns its unsubscribe function.
func (u *syncUsecase) Subscribe(fn func(SyncResult)) func() {
	u.mu.Lock()
	defer u.mu.Unlock()
	id := u.nextSub
	u.nextSub++
	u.subs[id] = fn
	return func() {
		u.mu.Lock()
		defer u.mu.Unlock()
		delete(u.subs, id)
	}
}

func (u *syncUsecase) notify(result SyncResult) {
	u.mu.Lock()
	fns := make([]func(SyncResult), 0, len(u.subs))
	for _, fn := range u.subs {
		fns = append(fns, fn)
	}
	u.mu.Unlock()
	for _, fn := range fns {
		fn(result)
	}
}
