package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	adapterrepo "github.com/kamusiapp/kamusi/internal/adapter/repository"
	"github.com/kamusiapp/kamusi/internal/entity"
	"github.com/kamusiapp/kamusi/internal/infrastructure/config"
	"github.com/kamusiapp/kamusi/internal/infrastructure/database"
	"github.com/kamusiapp/kamusi/internal/infrastructure/logging"
	"github.com/kamusiapp/kamusi/internal/infrastructure/storage"
	"github.com/kamusiapp/kamusi/internal/persistence"
	"github.com/kamusiapp/kamusi/internal/repository"
	"github.com/kamusiapp/kamusi/internal/store"
	"github.com/kamusiapp/kamusi/internal/usecase"
)

// Container aggregates the application dependencies.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	Store  *store.Store
	States repository.StateRepository
	Mirror repository.MirrorStore
	Study  usecase.StudyUsecase

	// Sync is nil when no catalog DSN is configured; the app then runs
	// purely on local state and whatever the mirror already holds.
	Sync usecase.SyncUsecase
}

// Initialize wires the application: config, logger, encrypted state
// persistence, the in-memory store, the offline mirror and the
// usecases. The store is seeded from the best-effort synchronous
// snapshot; call Hydrate to apply the authoritative load. The returned
// cleanup closes the underlying databases.
func Initialize() (*Container, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(cfg.Data.Dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create data dir: %w", err)
	}

	kv, err := storage.NewFileStore(filepath.Join(cfg.Data.Dir, "state"))
	if err != nil {
		return nil, nil, err
	}
	states, err := persistence.NewSnapshotStore(kv, logger)
	if err != nil {
		return nil, nil, err
	}

	seed := entity.NewDefaultState(time.Now().UnixMilli())
	if snap := states.LoadSync(); snap != nil {
		seed = *snap
	}
	st := store.New(seed, logger, store.WithPersister(states))

	mirrorDB, closeMirror, err := database.NewMirrorDB(cfg.MirrorPath())
	if err != nil {
		return nil, nil, err
	}
	mirror, err := adapterrepo.NewSQLiteMirror(mirrorDB, logger, func() int64 {
		return time.Now().UnixMilli()
	})
	if err != nil {
		closeMirror()
		return nil, nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		Store:  st,
		States: states,
		Mirror: mirror,
		Study:  usecase.NewStudyUsecase(mirror),
	}
	cleanup := closeMirror

	if cfg.Catalog.DSN != "" {
		catalogDB, closeCatalog, err := database.NewCatalogDB(cfg.Catalog.DSN)
		if err != nil {
			closeMirror()
			return nil, nil, err
		}
		c.Sync = usecase.NewSyncUsecase(adapterrepo.NewSQLCatalog(catalogDB), mirror, logger, cfg.Catalog.PageSize)
		cleanup = func() {
			closeCatalog()
			closeMirror()
		}
	}

	return c, cleanup, nil
}

// Hydrate runs the authoritative snapshot load and applies it to the
// store, unlocking persistence. A missing or unrecoverable snapshot
// hydrates a fresh default state.
func (c *Container) Hydrate(ctx context.Context) error {
	loaded, err := c.States.Load(ctx)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	state := entity.NewDefaultState(time.Now().UnixMilli())
	if loaded != nil {
		state = *loaded
	}
	c.Store.Dispatch(store.Hydrate{State: state})
	return nil
}
