package postgres

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"tasklist/internal/model"
	"tasklist/internal/store/sqlstore"
)

func TestDecodeNotification(t *testing.T) {
	c, err := decodeNotification(`{"op":"delete","id":12,"at":"2026-02-25T12:00:00+00:00"}`)
	if err != nil {
		t.Fatal(err)
	}
	if c.Op != model.ChangeDelete || c.ID != "12" {
		t.Fatalf("change=%+v", c)
	}
	if !c.At.Equal(time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("at=%s", c.At)
	}
}

func TestDecodeNotification_Rejects(t *testing.T) {
	for _, payload := range []string{`not json`, `{"op":"truncate","id":1}`} {
		if _, err := decodeNotification(payload); err == nil {
			t.Fatalf("expected error for %s", payload)
		}
	}
}

func TestListener_ReceivesTriggerNotifications(t *testing.T) {
	dsn := os.Getenv("TASKS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TASKS_TEST_POSTGRES_DSN not set (integration test)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := sqlstore.Open(ctx, sqlstore.Postgres, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	got := make(chan model.Change, 8)
	l := NewListener(dsn, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	go func() { _ = l.Watch(ctx, func(c model.Change) { got <- c }) }()

	// LISTEN is asynchronous; insert until the first notification arrives.
	var created model.Task
	for {
		created, err = st.Add(ctx, "notify me")
		if err != nil {
			t.Fatal(err)
		}
		select {
		case c := <-got:
			if c.Op != model.ChangeInsert {
				t.Fatalf("change=%+v", c)
			}
			_ = st.ClearAll(context.Background())
			return
		case <-time.After(200 * time.Millisecond):
		case <-ctx.Done():
			t.Fatalf("no notification for %s", created.ID)
		}
	}
}
