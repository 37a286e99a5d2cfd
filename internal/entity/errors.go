package entity

import "errors"

// Domain errors shared across the vocabulary core.
var (
	ErrInvalidStudyMode   = errors.New("invalid study mode")
	ErrInvalidCachedVocab = errors.New("invalid cached vocab record")
	ErrSnapshotVersion    = errors.New("unsupported snapshot version")
	ErrCatalogUnavailable = errors.New("remote catalog unavailable")
)
