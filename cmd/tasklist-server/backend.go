package main

import (
	"context"
	"fmt"
	"log/slog"

	"tasklist/internal/backend/googletasks"
	"tasklist/internal/config"
	"tasklist/internal/httpapi"
	"tasklist/internal/reactive"
	"tasklist/internal/store/memorystore"
	"tasklist/internal/store/postgres"
	"tasklist/internal/store/sqlstore"
	"tasklist/internal/task"
)

// backend is an opened repository plus what the server needs around it.
type backend struct {
	repo   task.Repository
	pinger httpapi.Pinger
	// feed is set when the store reports its own changes, so writes made
	// by other processes reach the change stream too.
	feed  reactive.ChangeFeed
	close func() error
}

func openBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		st := memorystore.NewTaskStore()
		return &backend{repo: st, pinger: st, close: func() error { return nil }}, nil

	case config.BackendSQLite, config.BackendMySQL:
		d := sqlstore.SQLite
		if cfg.Backend == config.BackendMySQL {
			d = sqlstore.MySQL
		}
		st, err := sqlstore.Open(ctx, d, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &backend{repo: st, pinger: st, close: st.Close}, nil

	case config.BackendPostgres:
		st, err := sqlstore.Open(ctx, sqlstore.Postgres, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return &backend{
			repo:   st,
			pinger: st,
			feed:   postgres.NewListener(cfg.DSN, logger),
			close:  st.Close,
		}, nil

	case config.BackendGoogleTasks:
		c, err := googletasks.New(ctx, cfg.GoogleConfigDir, cfg.GoogleListID)
		if err != nil {
			return nil, err
		}
		return &backend{repo: c, pinger: c, close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
