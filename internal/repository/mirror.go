package repository

import (
	"context"

	"github.com/kamusiapp/kamusi/internal/entity"
)

// DayPage addresses one "day" slice of a sorted catalog: day N covers
// records [(N-1)*PageSize, N*PageSize) in creation order.
type DayPage struct {
	Day      int
	PageSize int
}

// MirrorQuery selects records from the offline mirror. An empty Category
// addresses the whole-mode slice. A nil Page returns the full slice.
type MirrorQuery struct {
	Mode     entity.StudyMode
	Category string
	Page     *DayPage
}

// ReplaceResult reports the outcome of a bulk replace: how many records
// were accepted versus dropped by validation, plus the batch checksum.
type ReplaceResult struct {
	Accepted int
	Dropped  int
	Checksum string
}

// MirrorStatus summarizes the cache contents for staleness display.
type MirrorStatus struct {
	TotalCount    int64
	PerModeCounts map[entity.StudyMode]int64
	LastUpdated   *int64
}

// MirrorStore is the offline mirror cache of the remote word catalog.
//
// BulkReplace atomically swaps all records for the exact (mode, category)
// key; a concurrent reader of that key sees either the fully-old or the
// fully-new set, never a mix. Records failing validation are dropped and
// counted, never silently lost.
type MirrorStore interface {
	BulkReplace(ctx context.Context, mode entity.StudyMode, category string, records []entity.CachedVocab) (ReplaceResult, error)
	Query(ctx context.Context, q MirrorQuery) ([]entity.CachedVocab, error)
	Count(ctx context.Context, mode entity.StudyMode, category string) (int64, error)
	Status(ctx context.Context) (MirrorStatus, error)
	Clear(ctx context.Context) error
	Close() error
}
