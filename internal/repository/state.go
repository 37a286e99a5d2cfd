package repository

import (
	"context"

	"github.com/kamusiapp/kamusi/internal/entity"
)

// StateRepository persists whole-state snapshots across app restarts.
//
// LoadSync is the best-effort read used to paint an initial screen; it
// never fails, returning nil on any problem. Load is the authoritative
// path: it falls back from encrypted to legacy plaintext and returns
// (nil, nil) when no usable snapshot exists — the caller seeds a fresh
// default state. A genuine storage I/O failure is returned as an error.
type StateRepository interface {
	LoadSync() *entity.AppState
	Load(ctx context.Context) (*entity.AppState, error)
	Save(state entity.AppState) error
}
