package app

import (
	"context"
	"fmt"

	"github.com/bottlecrew/droptracker/internal/adapter/postgres"
	droppointpg "github.com/bottlecrew/droptracker/internal/adapter/postgres/droppoint"
	eventlogpg "github.com/bottlecrew/droptracker/internal/adapter/postgres/eventlog"
	"github.com/bottlecrew/droptracker/internal/adapter/sqlite"
	"github.com/bottlecrew/droptracker/internal/config"
	"github.com/bottlecrew/droptracker/internal/domain"
	"github.com/bottlecrew/droptracker/internal/service/tracker"
)

// MetricsSink matches the counter sink consumed by the tracker service.
// Entry points pass the live metrics.Registry or metrics.Nop.
type MetricsSink interface {
	Increment(state domain.State, category string)
	Decrement(state domain.State, category string)
}

// NewTracker wires a tracker service onto the storage backend selected by
// storage.driver. The returned close function releases the connection pool
// or the database file handle.
func (a *App) NewTracker(ctx context.Context, sink MetricsSink) (*tracker.Service, func(), error) {
	switch a.Cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, a.Cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %w", err)
		}
		svc := tracker.NewService(
			a.Log,
			droppointpg.New(pool),
			eventlogpg.New(pool),
			postgres.NewTxManager(pool),
			sink,
			a.Categories,
			a.Cfg.Tracker,
		)
		return svc, pool.Close, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(a.Cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("storage: %w", err)
		}
		svc := tracker.NewService(
			a.Log,
			sqlite.NewDropPointRepo(store),
			sqlite.NewEventLogRepo(store),
			store,
			sink,
			a.Categories,
			a.Cfg.Tracker,
		)
		return svc, func() { _ = store.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", a.Cfg.Storage.Driver)
	}
}
