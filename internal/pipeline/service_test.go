package pipeline_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"scriptforge/internal/continuity"
	"scriptforge/internal/logging"
	"scriptforge/internal/pipeline"
	"scriptforge/internal/project"
	"scriptforge/internal/prompt"
	"scriptforge/internal/services/llm"
	"scriptforge/internal/statestore"
	"scriptforge/internal/testsupport"
)

type fakeCompleter struct {
	mu      sync.Mutex
	prompts []string
	replies []string
	err     error
	block   chan struct{}
	started chan struct{}
}

func (f *fakeCompleter) Complete(ctx context.Context, promptText string, temperature float64, model string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, promptText)
	var reply string
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	err := f.err
	block, started := f.block, f.started
	f.mu.Unlock()

	if started != nil {
		close(started)
	}
	if block != nil {
		<-block
	}
	return reply, err
}

func (f *fakeCompleter) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func newService(t *testing.T, client pipeline.Completer, opts ...testsupport.ConfigOption) (*pipeline.Service, *statestore.Store, pipeline.Settings) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	renderer, err := prompt.New(prompt.Options{})
	if err != nil {
		t.Fatalf("prompt.New: %v", err)
	}
	settings := pipeline.SettingsFromConfig(cfg)
	return pipeline.NewService(store, client, renderer, settings, logging.NewNop()), store, settings
}

func setOutline(t *testing.T, store *statestore.Store, id, outline string) {
	t.Helper()
	_, err := store.Mutate(context.Background(), func(s project.ApplicationState) (project.ApplicationState, error) {
		return s.SetOutline(id, outline)
	})
	if err != nil {
		t.Fatalf("set outline: %v", err)
	}
}

func TestRequestOutlineRequiresPrimarySelection(t *testing.T) {
	client := &fakeCompleter{}
	svc, store, _ := newService(t, client)
	ctx := context.Background()

	state, err := store.Mutate(ctx, func(s project.ApplicationState) (project.ApplicationState, error) {
		next, _, err := s.CreateProject("P", time.Now())
		return next, err
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p, _ := state.ActiveProject()

	_, err = svc.RequestOutline(ctx, p.ID)
	var missing *pipeline.MissingSelectionError
	if !errors.As(err, &missing) || missing.Role != project.RolePrimarySource {
		t.Fatalf("expected MissingSelectionError, got %v", err)
	}
	if missing.ErrorKind() != "validation" {
		t.Fatalf("unexpected kind %q", missing.ErrorKind())
	}
	got, _ := store.Snapshot().Project(p.ID)
	if got.Outline != "" {
		t.Fatalf("outline changed to %q", got.Outline)
	}
	if len(client.prompts) != 0 {
		t.Fatal("generation service contacted despite missing selection")
	}
}

func TestRequestOutlineReplacesOutline(t *testing.T) {
	client := &fakeCompleter{replies: []string{"阶段规划 v1", "阶段规划 v2"}}
	svc, store, settings := newService(t, client)
	source := testsupport.RepeatText("原著", settings.OutlineSourceLimit+10)
	p := testsupport.SeedProject(t, store, "P", source)

	for _, want := range []string{"阶段规划 v1", "阶段规划 v2"} {
		updated, err := svc.RequestOutline(context.Background(), p.ID)
		if err != nil {
			t.Fatalf("RequestOutline: %v", err)
		}
		if updated.Outline != want {
			t.Fatalf("outline = %q want %q", updated.Outline, want)
		}
	}
	sent := client.lastPrompt()
	if strings.Contains(sent, source) {
		t.Fatal("outline prompt was not bounded to the source prefix")
	}
	if !strings.Contains(sent, prompt.DefaultLayout) {
		t.Fatal("expected default layout placeholder in outline prompt")
	}
}

func TestRequestOutlineFailureKeepsOutline(t *testing.T) {
	client := &fakeCompleter{err: &llm.GenerationRequestError{StatusCode: 500, Message: "upstream down"}}
	svc, store, _ := newService(t, client)
	p := testsupport.SeedProject(t, store, "P", "正文")
	setOutline(t, store, p.ID, "旧大纲")

	_, err := svc.RequestOutline(context.Background(), p.ID)
	var reqErr *llm.GenerationRequestError
	if !errors.As(err, &reqErr) || reqErr.Message != "upstream down" {
		t.Fatalf("expected GenerationRequestError, got %v", err)
	}
	got, _ := store.Snapshot().Project(p.ID)
	if got.Outline != "旧大纲" {
		t.Fatalf("outline overwritten on failure: %q", got.Outline)
	}
}

func TestRequestBatchRequiresOutline(t *testing.T) {
	client := &fakeCompleter{}
	svc, store, _ := newService(t, client)
	p := testsupport.SeedProject(t, store, "P", "正文")

	_, err := svc.RequestBatch(context.Background(), p.ID, 1)
	var missing *pipeline.MissingOutlineError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingOutlineError, got %v", err)
	}
	if len(client.prompts) != 0 {
		t.Fatal("generation service contacted despite missing outline")
	}
}

func TestRequestBatchStoresCompletedBatch(t *testing.T) {
	client := &fakeCompleter{replies: []string{"EP1-3 CONTENT"}}
	svc, store, _ := newService(t, client, testsupport.WithBatchWidth(3))
	p := testsupport.SeedProject(t, store, "P", "正文")
	setOutline(t, store, p.ID, "...")

	if r := svc.EpisodeRange(1); r.First != 1 || r.Last != 3 {
		t.Fatalf("unexpected episode range %+v", r)
	}
	batch, err := svc.RequestBatch(context.Background(), p.ID, 1)
	if err != nil {
		t.Fatalf("RequestBatch: %v", err)
	}
	if batch.SequenceIndex != 1 || batch.Status != project.StatusCompleted || batch.Content != "EP1-3 CONTENT" {
		t.Fatalf("unexpected batch %#v", batch)
	}
	got, _ := store.Snapshot().Project(p.ID)
	if len(got.Batches) != 1 || got.HighestCompletedIndex != 1 || svc.NextSequenceIndex(got) != 2 {
		t.Fatalf("unexpected project state %#v", got)
	}
	sent := client.lastPrompt()
	if !strings.Contains(sent, "编写第 1 - 3 集") || !strings.Contains(sent, continuity.NoPriorContext) || !strings.Contains(sent, continuity.OpeningSummary) {
		t.Fatalf("unexpected first batch prompt:\n%s", sent)
	}
}

func TestRequestBatchRegenerationReplaces(t *testing.T) {
	client := &fakeCompleter{replies: []string{"first", "second"}}
	svc, store, _ := newService(t, client)
	p := testsupport.SeedProject(t, store, "P", "正文")
	setOutline(t, store, p.ID, "...")

	for i := 0; i < 2; i++ {
		if _, err := svc.RequestBatch(context.Background(), p.ID, 1); err != nil {
			t.Fatalf("RequestBatch: %v", err)
		}
	}
	got, _ := store.Snapshot().Project(p.ID)
	if len(got.Batches) != 1 {
		t.Fatalf("expected one batch, got %d", len(got.Batches))
	}
	if b, _ := got.Batch(1); b.Content != "second" {
		t.Fatalf("expected replacement, got %q", b.Content)
	}
}

func TestBatchContinuityFollowsSequenceOrder(t *testing.T) {
	client := &fakeCompleter{replies: []string{"B\n【全剧累积剧情快照更新】\n快照二", "A", "C"}}
	svc, store, _ := newService(t, client, testsupport.WithContinuityChars(100, 100))
	p := testsupport.SeedProject(t, store, "P", "正文")
	setOutline(t, store, p.ID, "...")
	ctx := context.Background()

	// Complete index 2 before index 1.
	for _, idx := range []int{2, 1} {
		if _, err := svc.RequestBatch(ctx, p.ID, idx); err != nil {
			t.Fatalf("RequestBatch(%d): %v", idx, err)
		}
	}
	got, _ := store.Snapshot().Project(p.ID)
	req, err := svc.BuildBatchRequest(got, 3)
	if err != nil {
		t.Fatalf("BuildBatchRequest: %v", err)
	}
	wantRecent := "A\n\nB\n【全剧累积剧情快照更新】\n快照二"
	if req.Continuity.Recent != wantRecent {
		t.Fatalf("continuity = %q want %q", req.Continuity.Recent, wantRecent)
	}
	if req.Continuity.Summary != "快照二" {
		t.Fatalf("summary = %q", req.Continuity.Summary)
	}
	if req.Episodes.First != 7 || req.Episodes.Last != 9 {
		t.Fatalf("unexpected episodes %+v", req.Episodes)
	}

	if _, err := svc.RequestBatch(ctx, p.ID, 3); err != nil {
		t.Fatalf("RequestBatch(3): %v", err)
	}
	if sent := client.lastPrompt(); !strings.Contains(sent, "<PREVIOUS_CONTEXT>\n"+wantRecent+"\n</PREVIOUS_CONTEXT>") {
		t.Fatalf("prompt missing carried context:\n%s", sent)
	}
}

func TestContinuityTruncatesToTail(t *testing.T) {
	client := &fakeCompleter{replies: []string{"AAAA", "BBBB"}}
	svc, store, _ := newService(t, client, testsupport.WithContinuityChars(5, 3))
	p := testsupport.SeedProject(t, store, "P", "正文")
	setOutline(t, store, p.ID, "...")
	for _, idx := range []int{1, 2} {
		if _, err := svc.RequestBatch(context.Background(), p.ID, idx); err != nil {
			t.Fatalf("RequestBatch: %v", err)
		}
	}
	got, _ := store.Snapshot().Project(p.ID)
	req, err := svc.BuildBatchRequest(got, 3)
	if err != nil {
		t.Fatalf("BuildBatchRequest: %v", err)
	}
	if req.Continuity.Recent != "\nBBBB" || req.Continuity.Handoff != "BBB" {
		t.Fatalf("unexpected continuity %#v", req.Continuity)
	}
}

func TestRequestBatchFailureBookkeeping(t *testing.T) {
	client := &fakeCompleter{replies: []string{"good"}}
	svc, store, _ := newService(t, client)
	p := testsupport.SeedProject(t, store, "P", "正文")
	setOutline(t, store, p.ID, "...")
	ctx := context.Background()

	if _, err := svc.RequestBatch(ctx, p.ID, 1); err != nil {
		t.Fatalf("RequestBatch: %v", err)
	}
	client.err = &llm.MalformedResponseError{FinishReason: "length"}

	_, err := svc.RequestBatch(ctx, p.ID, 1)
	var malformed *llm.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedResponseError, got %v", err)
	}
	_, err = svc.RequestBatch(ctx, p.ID, 2)
	if err == nil {
		t.Fatal("expected failure")
	}

	got, _ := store.Snapshot().Project(p.ID)
	if b, _ := got.Batch(1); b.Content != "good" || !b.Completed() {
		t.Fatalf("completed batch overwritten by failure: %#v", b)
	}
	failed, ok := got.Batch(2)
	if !ok || failed.Status != project.StatusFailed || failed.ErrorMessage == "" {
		t.Fatalf("expected failed batch recorded, got %#v", failed)
	}
	if got.HighestCompletedIndex != 1 {
		t.Fatalf("failure moved highest index to %d", got.HighestCompletedIndex)
	}
}

func TestConcurrentRequestRejected(t *testing.T) {
	client := &fakeCompleter{replies: []string{"x"}, block: make(chan struct{}), started: make(chan struct{})}
	svc, store, _ := newService(t, client)
	p := testsupport.SeedProject(t, store, "P", "正文")
	setOutline(t, store, p.ID, "...")

	done := make(chan error, 1)
	go func() {
		_, err := svc.RequestBatch(context.Background(), p.ID, 1)
		done <- err
	}()
	<-client.started

	_, err := svc.RequestOutline(context.Background(), p.ID)
	var busy *pipeline.GenerationInProgressError
	if !errors.As(err, &busy) || busy.ErrorKind() != "conflict" {
		t.Fatalf("expected GenerationInProgressError, got %v", err)
	}

	close(client.block)
	if err := <-done; err != nil {
		t.Fatalf("first request failed: %v", err)
	}
}

func TestGenerationLockFileRejectsOtherProcess(t *testing.T) {
	client := &fakeCompleter{}
	svc, store, settings := newService(t, client)
	p := testsupport.SeedProject(t, store, "P", "正文")

	held := flock.New(filepath.Join(settings.LockDir, p.ID+".lock"))
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("hold lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	_, err = svc.RequestOutline(context.Background(), p.ID)
	var busy *pipeline.GenerationInProgressError
	if !errors.As(err, &busy) {
		t.Fatalf("expected GenerationInProgressError, got %v", err)
	}
}

func TestRequestBatchRejectsInvalidIndex(t *testing.T) {
	svc, store, _ := newService(t, &fakeCompleter{})
	p := testsupport.SeedProject(t, store, "P", "正文")
	setOutline(t, store, p.ID, "...")
	if _, err := svc.RequestBatch(context.Background(), p.ID, 0); !errors.Is(err, project.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.RequestBatch(context.Background(), "missing", 1); !errors.Is(err, project.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}
