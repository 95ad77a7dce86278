package statestore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriptforge/internal/config"
	"scriptforge/internal/logging"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.ExportDir = filepath.Join(base, "exports")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

func TestMalformedStateFallsBackToEmpty(t *testing.T) {
	cfg := newTestConfig(t)
	ctx := context.Background()

	store, err := Open(ctx, cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.putValue(ctx, StateKey, "{not valid json"); err != nil {
		t.Fatalf("putValue: %v", err)
	}
	store.Close()

	logPath := filepath.Join(t.TempDir(), "warn.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logging.New: %v", err)
	}
	reopened, err := Open(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Open with malformed state should not fail: %v", err)
	}
	defer reopened.Close()

	state := reopened.Snapshot()
	if len(state.Projects) != 0 || state.ActiveProjectID != "" {
		t.Fatalf("expected empty state, got %#v", state)
	}
	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(content), "WARN statestore:") || !strings.Contains(string(content), "state_decode_failed") {
		t.Fatalf("expected warning logged, got %q", content)
	}
}

func TestGetValueMissingKey(t *testing.T) {
	store, err := Open(context.Background(), newTestConfig(t), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	_, found, err := store.getValue(context.Background(), "absent")
	if err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}
}

func TestPersistenceReadErrorKind(t *testing.T) {
	err := &PersistenceReadError{Key: StateKey, Err: errors.New("bad")}
	if err.ErrorKind() != "persistence" || !strings.Contains(err.Error(), StateKey) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestIsSQLiteBusy(t *testing.T) {
	if !isSQLiteBusy(errors.New("database is locked")) {
		t.Fatal("expected busy detection")
	}
	if isSQLiteBusy(errors.New("no such table")) || isSQLiteBusy(nil) {
		t.Fatal("unexpected busy detection")
	}
}
