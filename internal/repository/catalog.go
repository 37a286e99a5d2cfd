package repository

import (
	"context"

	"github.com/kamusiapp/kamusi/internal/entity"
)

// CatalogClient is the thin query layer over the remote word catalog.
// Pages are ordered by creation time ascending so that online and offline
// day boundaries line up for identical content. Implementations filter
// tombstoned records before returning.
type CatalogClient interface {
	Count(ctx context.Context, mode entity.StudyMode, category string) (int64, error)
	FetchPage(ctx context.Context, mode entity.StudyMode, category string, offset, limit int) ([]entity.CachedVocab, error)
}
