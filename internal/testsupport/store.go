package testsupport

import (
	"context"
	"testing"
	"time"

	"scriptforge/internal/config"
	"scriptforge/internal/logging"
	"scriptforge/internal/project"
	"scriptforge/internal/statestore"
)

// MustOpenStore opens a statestore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *statestore.Store {
	t.Helper()

	store, err := statestore.Open(context.Background(), cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("statestore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// SeedProject creates a project holding one selected primary source document
// and returns it.
func SeedProject(t testing.TB, store *statestore.Store, name, source string) project.Project {
	t.Helper()

	var created project.Project
	_, err := store.Mutate(context.Background(), func(s project.ApplicationState) (project.ApplicationState, error) {
		next, p, err := s.CreateProject(name, time.Now())
		if err != nil {
			return s, err
		}
		created = p
		doc := project.NewDocument("source.txt", project.RolePrimarySource, source, "text/plain")
		return next.AddDocuments(p.ID, true, doc)
	})
	if err != nil {
		t.Fatalf("seed project: %v", err)
	}
	state := store.Snapshot()
	p, ok := state.Project(created.ID)
	if !ok {
		t.Fatalf("seeded project %s missing", created.ID)
	}
	return p
}
