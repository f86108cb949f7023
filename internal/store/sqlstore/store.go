package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tasklist/internal/model"
)

type Store struct {
	db      *sqlx.DB
	dialect Dialect
}

// Open connects, pings and creates the schema if missing.
func Open(ctx context.Context, d Dialect, dsn string) (*Store, error) {
	if d.prepare != nil {
		var err error
		if dsn, err = d.prepare(dsn); err != nil {
			return nil, fmt.Errorf("%s dsn: %w", d.Name, err)
		}
	}
	db, err := sqlx.Open(d.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name, err)
	}
	if d.maxConns > 0 {
		db.SetMaxOpenConns(d.maxConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", d.Name, err)
	}
	s := &Store{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s migrate: %w", d.Name, err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	for _, ddl := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]model.Task, error) {
	q := "SELECT " + s.dialect.columns + " FROM tasks ORDER BY " + s.dialect.orderBy
	tasks := []model.Task{}
	if err := s.db.SelectContext(ctx, &tasks, q); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) Add(ctx context.Context, text string) (model.Task, error) {
	var t model.Task
	if s.dialect.returning {
		q := s.db.Rebind("INSERT INTO tasks (text, done) VALUES (?, ?) RETURNING " + s.dialect.columns)
		if err := s.db.QueryRowxContext(ctx, q, text, false).StructScan(&t); err != nil {
			return model.Task{}, err
		}
		return t, nil
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind("INSERT INTO tasks (text, done) VALUES (?, ?)"), text, false)
	if err != nil {
		return model.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Task{}, err
	}
	q := s.db.Rebind("SELECT " + s.dialect.columns + " FROM tasks WHERE id = ?")
	if err := s.db.GetContext(ctx, &t, q, id); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *Store) Update(ctx context.Context, id model.ID, text string, done bool) error {
	key, ok := id.Int64()
	if !ok {
		return nil
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind("UPDATE tasks SET text = ?, done = ? WHERE id = ?"), text, done, key)
	return err
}

func (s *Store) Delete(ctx context.Context, id model.ID) error {
	key, ok := id.Int64()
	if !ok {
		return nil
	}
	_, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM tasks WHERE id = ?"), key)
	return err
}

func (s *Store) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM tasks")
	return err
}
