package project_test

import (
	"errors"
	"testing"
	"time"

	"scriptforge/internal/project"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func mustCreate(t *testing.T, s project.ApplicationState, name string) (project.ApplicationState, project.Project) {
	t.Helper()
	out, p, err := s.CreateProject(name, now)
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	return out, p
}

func TestCreateProjectSelectsAndNavigates(t *testing.T) {
	initial := project.Empty()
	state, p := mustCreate(t, initial, "  剑来  ")

	if p.Name != "剑来" || p.ID == "" {
		t.Fatalf("unexpected project %#v", p)
	}
	if p.Mode != project.ModeMale || p.Outline != "" || len(p.Batches) != 0 || len(p.Documents) != 0 {
		t.Fatalf("expected empty project with default mode, got %#v", p)
	}
	if state.ActiveProjectID != p.ID || state.CurrentScreen != project.ScreenKnowledgeBase {
		t.Fatalf("expected active project on knowledge base, got %q %q", state.ActiveProjectID, state.CurrentScreen)
	}
	if len(initial.Projects) != 0 {
		t.Fatal("receiver state was modified")
	}
	if _, _, err := initial.CreateProject(" ", now); !errors.Is(err, project.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteActiveProjectClearsPointer(t *testing.T) {
	state, a := mustCreate(t, project.Empty(), "A")
	state, b := mustCreate(t, state, "B")

	afterInactive, err := state.DeleteProject(a.ID)
	if err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if afterInactive.ActiveProjectID != b.ID {
		t.Fatalf("deleting inactive project should keep active pointer")
	}

	afterActive, err := afterInactive.DeleteProject(b.ID)
	if err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if afterActive.ActiveProjectID != "" || afterActive.CurrentScreen != project.ScreenManagement {
		t.Fatalf("expected cleared pointer on management screen, got %#v", afterActive)
	}
	if _, err := afterActive.DeleteProject("missing"); !errors.Is(err, project.ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if len(state.Projects) != 2 {
		t.Fatal("receiver state was modified")
	}
}

func TestUpdateProjectIsShallowMerge(t *testing.T) {
	state, p := mustCreate(t, project.Empty(), "A")
	doc := project.NewDocument("novel.txt", project.RolePrimarySource, "正文", "text/plain")
	state, err := state.AddDocuments(p.ID, true, doc)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	state, _, err = state.PutBatch(p.ID, 1, "EP1-3", now)
	if err != nil {
		t.Fatalf("PutBatch: %v", err)
	}

	name := "B"
	updated, err := state.UpdateProject(p.ID, project.Update{Name: &name})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	got, _ := updated.Project(p.ID)
	if got.Name != "B" || len(got.Documents) != 1 || len(got.Batches) != 1 || got.SelectedPrimarySourceID != doc.ID {
		t.Fatalf("expected only name to change, got %#v", got)
	}

	empty := []project.GenerationBatch{}
	replaced, err := updated.UpdateProject(p.ID, project.Update{Batches: &empty})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	got, _ = replaced.Project(p.ID)
	if len(got.Batches) != 0 || len(got.Documents) != 1 {
		t.Fatalf("expected batch collection replaced, got %#v", got)
	}
}

func TestUpdateProjectRejectsWrongRoleSelection(t *testing.T) {
	state, p := mustCreate(t, project.Empty(), "A")
	layout := project.NewDocument("layout.txt", project.RoleLayoutTemplate, "排版", "text/plain")
	state, err := state.AddDocuments(p.ID, false, layout)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	_, err = state.UpdateProject(p.ID, project.Update{SelectedPrimarySourceID: &layout.ID})
	if !errors.Is(err, project.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
}

func TestPutBatchReplacesAtIndex(t *testing.T) {
	state, p := mustCreate(t, project.Empty(), "A")

	var err error
	for _, content := range []string{"first", "second"} {
		state, _, err = state.PutBatch(p.ID, 2, content, now)
		if err != nil {
			t.Fatalf("PutBatch: %v", err)
		}
	}
	got, _ := state.Project(p.ID)
	count := 0
	for _, b := range got.Batches {
		if b.SequenceIndex == 2 {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one batch at index 2, got %d", count)
	}
	batch, _ := got.Batch(2)
	if batch.Content != "second" || batch.Status != project.StatusCompleted {
		t.Fatalf("unexpected batch %#v", batch)
	}
}

func TestHighestCompletedIndexNeverDecreases(t *testing.T) {
	state, p := mustCreate(t, project.Empty(), "A")
	order := []int{3, 1, 2, 5, 4}
	prev := 0
	var err error
	for _, idx := range order {
		state, _, err = state.PutBatch(p.ID, idx, "x", now)
		if err != nil {
			t.Fatalf("PutBatch: %v", err)
		}
		got, _ := state.Project(p.ID)
		if got.HighestCompletedIndex < prev {
			t.Fatalf("highest decreased from %d to %d", prev, got.HighestCompletedIndex)
		}
		prev = got.HighestCompletedIndex
	}
	got, _ := state.Project(p.ID)
	if got.HighestCompletedIndex != 5 || got.NextSequenceIndex() != 6 {
		t.Fatalf("expected highest 5 next 6, got %d %d", got.HighestCompletedIndex, got.NextSequenceIndex())
	}
}

func TestRecordFailureKeepsExistingBatch(t *testing.T) {
	state, p := mustCreate(t, project.Empty(), "A")
	state, _, err := state.PutBatch(p.ID, 1, "good", now)
	if err != nil {
		t.Fatalf("PutBatch: %v", err)
	}

	after, recorded, err := state.RecordFailure(p.ID, 1, "boom", now)
	if err != nil || recorded {
		t.Fatalf("expected no failure record over existing batch, recorded=%v err=%v", recorded, err)
	}
	got, _ := after.Project(p.ID)
	if b, _ := got.Batch(1); b.Content != "good" || !b.Completed() {
		t.Fatalf("existing batch changed: %#v", b)
	}

	after, recorded, err = after.RecordFailure(p.ID, 2, "boom", now)
	if err != nil || !recorded {
		t.Fatalf("expected failure recorded, recorded=%v err=%v", recorded, err)
	}
	got, _ = after.Project(p.ID)
	failed, _ := got.Batch(2)
	if failed.Status != project.StatusFailed || failed.ErrorMessage != "boom" {
		t.Fatalf("unexpected failed batch %#v", failed)
	}
	if got.HighestCompletedIndex != 1 {
		t.Fatalf("failure moved highest index to %d", got.HighestCompletedIndex)
	}
	if len(got.CompletedBefore(3)) != 1 {
		t.Fatalf("failed batch should not count as completed")
	}
}

func TestRemoveDocumentClearsSelection(t *testing.T) {
	state, p := mustCreate(t, project.Empty(), "A")
	doc := project.NewDocument("novel.txt", project.RolePrimarySource, "正文", "text/plain")
	state, err := state.AddDocuments(p.ID, true, doc)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	state, err = state.RemoveDocument(p.ID, doc.ID)
	if err != nil {
		t.Fatalf("RemoveDocument: %v", err)
	}
	got, _ := state.Project(p.ID)
	if got.SelectedPrimarySourceID != "" || len(got.Documents) != 0 {
		t.Fatalf("expected document and selection removed, got %#v", got)
	}
	if _, err := state.RemoveDocument(p.ID, doc.ID); !errors.Is(err, project.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestNavigation(t *testing.T) {
	state, p := mustCreate(t, project.Empty(), "A")
	if _, err := state.EnterWorkspace(p.ID); !errors.Is(err, project.ErrNoPrimarySource) {
		t.Fatalf("expected ErrNoPrimarySource, got %v", err)
	}
	state, err := state.AddDocuments(p.ID, false, project.NewDocument("n.txt", project.RolePrimarySource, "x", "text/plain"))
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	state, err = state.EnterWorkspace(p.ID)
	if err != nil {
		t.Fatalf("EnterWorkspace: %v", err)
	}
	if state.CurrentScreen != project.ScreenWorkspace {
		t.Fatalf("expected workspace, got %q", state.CurrentScreen)
	}
	state = state.Back()
	if state.CurrentScreen != project.ScreenKnowledgeBase || state.ActiveProjectID != p.ID {
		t.Fatalf("expected knowledge base with active project, got %#v", state)
	}
	state = state.Back()
	if state.CurrentScreen != project.ScreenManagement || state.ActiveProjectID != "" {
		t.Fatalf("expected management without active project, got %#v", state)
	}
}

func TestSanitizedRepairsDanglingReferences(t *testing.T) {
	state, p := mustCreate(t, project.Empty(), "A")
	layout := project.NewDocument("layout.txt", project.RoleLayoutTemplate, "排版", "text/plain")
	state, err := state.AddDocuments(p.ID, false, layout)
	if err != nil {
		t.Fatalf("AddDocuments: %v", err)
	}
	state.Projects[0].SelectedPrimarySourceID = layout.ID
	state.Projects[0].SelectedStyleTemplateID = "gone"
	state.Projects[0].Batches = []project.GenerationBatch{
		{SequenceIndex: 2, Content: "old", Status: project.StatusCompleted},
		{SequenceIndex: 1, Content: "a", Status: project.StatusCompleted},
		{SequenceIndex: 2, Content: "new", Status: project.StatusCompleted},
	}

	clean := state.Sanitized()
	got, _ := clean.Project(p.ID)
	if got.SelectedPrimarySourceID != "" || got.SelectedStyleTemplateID != "" {
		t.Fatalf("expected invalid selections cleared, got %#v", got)
	}
	if len(got.Batches) != 2 || got.Batches[0].SequenceIndex != 1 || got.Batches[1].Content != "new" {
		t.Fatalf("expected deduplicated sorted batches, got %#v", got.Batches)
	}

	dangling := clean
	dangling.ActiveProjectID = "missing"
	dangling = dangling.Sanitized()
	if dangling.ActiveProjectID != "" || dangling.CurrentScreen != project.ScreenManagement {
		t.Fatalf("expected dangling active pointer cleared, got %#v", dangling)
	}
}

func TestParseRoleAndMode(t *testing.T) {
	roles := map[string]project.DocumentRole{
		"primary":         project.RolePrimarySource,
		"layout":          project.RoleLayoutTemplate,
		"STYLE":           project.RoleStyleTemplate,
		"layout_template": project.RoleLayoutTemplate,
	}
	for in, want := range roles {
		got, err := project.ParseRole(in)
		if err != nil || got != want {
			t.Fatalf("ParseRole(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := project.ParseRole("cover"); !errors.Is(err, project.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if m, err := project.ParseMode("Female"); err != nil || m != project.ModeFemale {
		t.Fatalf("ParseMode: %q %v", m, err)
	}
	if project.RolePrimarySource.Label() != "原著小说" {
		t.Fatalf("unexpected label %q", project.RolePrimarySource.Label())
	}
}
