package statestore_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"scriptforge/internal/project"
	"scriptforge/internal/statestore"
	"scriptforge/internal/testsupport"
)

func TestOpenStartsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	state := store.Snapshot()
	if len(state.Projects) != 0 || state.ActiveProjectID != "" || state.CurrentScreen != project.ScreenManagement {
		t.Fatalf("expected empty state, got %#v", state)
	}
}

func TestRoundTripPreservesContent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	p := testsupport.SeedProject(t, store, "剑来", "第一章 少年")
	_, err := store.Mutate(ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
		next, err := s.SetOutline(p.ID, "阶段 1（第 1-9 集）")
		if err != nil {
			return s, err
		}
		next, _, err = next.PutBatch(p.ID, 1, "EP1-3 CONTENT", time.Now())
		return next, err
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	before := store.Snapshot()
	store.Close()

	reopened := testsupport.MustOpenStore(t, cfg)
	after := reopened.Snapshot()

	if after.ActiveProjectID != before.ActiveProjectID {
		t.Fatalf("active project changed: %q vs %q", after.ActiveProjectID, before.ActiveProjectID)
	}
	got, ok := after.Project(p.ID)
	if !ok {
		t.Fatalf("project %s missing after reload", p.ID)
	}
	if got.Outline != "阶段 1（第 1-9 集）" || got.HighestCompletedIndex != 1 {
		t.Fatalf("unexpected project after reload: %#v", got)
	}
	if len(got.Documents) != 1 || got.Documents[0].Content != "第一章 少年" {
		t.Fatalf("document content lost: %#v", got.Documents)
	}
	if b, ok := got.Batch(1); !ok || b.Content != "EP1-3 CONTENT" || b.Status != project.StatusCompleted {
		t.Fatalf("batch lost: %#v", got.Batches)
	}
}

func TestMutateFailureWritesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	p := testsupport.SeedProject(t, store, "A", "x")

	boom := errors.New("boom")
	_, err := store.Mutate(context.Background(), func(s project.ApplicationState) (project.ApplicationState, error) {
		next, _ := s.SetOutline(p.ID, "should not persist")
		return next, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	state, err := store.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	got, _ := state.Project(p.ID)
	if got.Outline != "" {
		t.Fatalf("failed mutation was persisted: %q", got.Outline)
	}
}

func TestMutateSeesWritesFromOtherStores(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	second := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	p := testsupport.SeedProject(t, first, "A", "x")

	// second still holds the snapshot from before the project existed.
	if len(second.Snapshot().Projects) != 0 {
		t.Fatal("expected stale snapshot in second store")
	}
	state, err := second.Mutate(ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
		return s.SetOutline(p.ID, "from second")
	})
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	got, ok := state.Project(p.ID)
	if !ok || got.Outline != "from second" || len(got.Documents) != 1 {
		t.Fatalf("expected mutation applied on top of first store's write, got %#v", got)
	}
}

func TestOpenWithNilLogger(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := statestore.Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()
	if store.Path() != cfg.StatePath() {
		t.Fatalf("unexpected path %q", store.Path())
	}
}
