package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tasklist/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(backend config.Backend, dsn string) config.Config {
	return config.Config{
		Backend:         backend,
		DSN:             dsn,
		RequestTimeout:  time.Second,
		ShutdownTimeout: time.Second,
	}
}

func startServer(t *testing.T, cfg config.Config) (string, func() error) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, ln, cfg, discardLogger()) }()

	base := "http://" + ln.Addr().String()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server never came up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	stop := func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(3 * time.Second):
			t.Fatal("server did not stop")
			return nil
		}
	}
	return base, stop
}

func TestServe_MemoryBackend(t *testing.T) {
	base, stop := startServer(t, testConfig(config.BackendMemory, ""))

	resp, err := http.Post(base+"/api/tasks", "application/json", strings.NewReader(`{"text":"a"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/readyz")
	if err != nil {
		t.Fatalf("readyz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("readyz status=%d", resp.StatusCode)
	}

	if err := stop(); err != nil {
		t.Fatalf("serve returned %v", err)
	}
}

func TestServe_SQLitePersistsAcrossRestarts(t *testing.T) {
	cfg := testConfig(config.BackendSQLite, filepath.Join(t.TempDir(), "tasks.db"))

	base, stop := startServer(t, cfg)
	resp, err := http.Post(base+"/api/tasks", "application/json", strings.NewReader(`{"text":"durable"}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if err := stop(); err != nil {
		t.Fatalf("serve returned %v", err)
	}

	base, stop = startServer(t, cfg)
	defer func() { _ = stop() }()

	resp, err = http.Get(base + "/api/tasks")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	var tasks []struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Text != "durable" {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}

func TestServe_BackendOpenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	cfg := testConfig(config.BackendSQLite, filepath.Join(t.TempDir(), "missing", "dir", "tasks.db"))

	if err := serve(context.Background(), ln, cfg, discardLogger()); err == nil {
		t.Fatal("expected error for unopenable database")
	}
}
