package project

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Every transition below works on a deep copy and returns the new state; the
// receiver is never modified.

// Clone returns a deep copy of the state.
func (s ApplicationState) Clone() ApplicationState {
	out := s
	out.Projects = make([]Project, len(s.Projects))
	for i, p := range s.Projects {
		out.Projects[i] = p.clone()
	}
	return out
}

func (p Project) clone() Project {
	out := p
	out.Documents = append([]ReferenceDocument(nil), p.Documents...)
	out.Batches = append([]GenerationBatch(nil), p.Batches...)
	return out
}

// Project returns the project with the given id.
func (s ApplicationState) Project(id string) (Project, bool) {
	for _, p := range s.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// ActiveProject resolves the active pointer. A dangling pointer counts as no
// active project.
func (s ApplicationState) ActiveProject() (Project, bool) {
	if s.ActiveProjectID == "" {
		return Project{}, false
	}
	return s.Project(s.ActiveProjectID)
}

// ListProjects returns the projects newest first.
func (s ApplicationState) ListProjects() []Project {
	out := append([]Project(nil), s.Projects...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Sanitized repairs references that no longer resolve: a dangling active
// pointer, selections of the wrong role, duplicate batch indices and an
// unknown screen.
func (s ApplicationState) Sanitized() ApplicationState {
	out := s.Clone()
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	for i := range out.Projects {
		p := &out.Projects[i]
		for _, role := range allRoles {
			if _, ok := p.Selected(role); !ok {
				p.setSelection(role, "")
			}
		}
		if !p.Mode.valid() {
			p.Mode = DefaultMode
		}
		p.Batches = dedupeBatches(p.Batches)
		if p.HighestCompletedIndex < 0 {
			p.HighestCompletedIndex = 0
		}
	}
	if _, ok := out.ActiveProject(); !ok {
		out.ActiveProjectID = ""
	}
	if !out.CurrentScreen.valid() || (out.ActiveProjectID == "" && out.CurrentScreen != ScreenManagement) {
		out.CurrentScreen = ScreenManagement
	}
	return out
}

func (m ProductionMode) valid() bool {
	return m == ModeMale || m == ModeFemale
}

// dedupeBatches keeps the last batch stored for each index, sorted ascending.
func dedupeBatches(batches []GenerationBatch) []GenerationBatch {
	byIndex := make(map[int]GenerationBatch, len(batches))
	for _, b := range batches {
		if b.SequenceIndex < 1 {
			continue
		}
		byIndex[b.SequenceIndex] = b
	}
	out := make([]GenerationBatch, 0, len(byIndex))
	for _, b := range byIndex {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceIndex < out[j].SequenceIndex })
	return out
}

func (s ApplicationState) indexOf(id string) int {
	for i, p := range s.Projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// withProject applies fn to a copy of the project with the given id.
func (s ApplicationState) withProject(id string, fn func(p *Project) error) (ApplicationState, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	out := s.Clone()
	if err := fn(&out.Projects[idx]); err != nil {
		return s, err
	}
	return out, nil
}

// CreateProject adds an empty project, makes it active and moves to the
// knowledge base screen.
func (s ApplicationState) CreateProject(name string, now time.Time) (ApplicationState, Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s, Project{}, fmt.Errorf("%w: project name required", ErrInvalidInput)
	}
	p := Project{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now.UTC(),
		Documents: []ReferenceDocument{},
		Batches:   []GenerationBatch{},
		Mode:      DefaultMode,
	}
	out := s.Clone()
	out.Projects = append(out.Projects, p)
	out.ActiveProjectID = p.ID
	out.CurrentScreen = ScreenKnowledgeBase
	return out, p, nil
}

// DeleteProject removes a project. Deleting the active project clears the
// active pointer and returns to the management screen.
func (s ApplicationState) DeleteProject(id string) (ApplicationState, error) {
	idx := s.indexOf(id)
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	out := s.Clone()
	out.Projects = append(out.Projects[:idx], out.Projects[idx+1:]...)
	if out.ActiveProjectID == id {
		out.ActiveProjectID = ""
		out.CurrentScreen = ScreenManagement
	}
	return out, nil
}

// SelectProject marks a project active and moves to the knowledge base screen.
func (s ApplicationState) SelectProject(id string) (ApplicationState, error) {
	if s.indexOf(id) < 0 {
		return s, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	out := s.Clone()
	out.ActiveProjectID = id
	out.CurrentScreen = ScreenKnowledgeBase
	return out, nil
}

// EnterWorkspace moves to the workspace screen for a project that has at
// least one primary source document.
func (s ApplicationState) EnterWorkspace(id string) (ApplicationState, error) {
	p, ok := s.Project(id)
	if !ok {
		return s, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if !p.HasPrimarySource() {
		return s, ErrNoPrimarySource
	}
	out := s.Clone()
	out.ActiveProjectID = id
	out.CurrentScreen = ScreenWorkspace
	return out, nil
}

// Back steps one screen towards management. Leaving the knowledge base clears
// the active project.
func (s ApplicationState) Back() ApplicationState {
	out := s.Clone()
	switch out.CurrentScreen {
	case ScreenWorkspace:
		out.CurrentScreen = ScreenKnowledgeBase
	default:
		out.CurrentScreen = ScreenManagement
		out.ActiveProjectID = ""
	}
	return out
}

// Update is a shallow merge descriptor. Nil fields are left unchanged; a
// non-nil slice pointer replaces the whole collection.
type Update struct {
	Name                     *string
	Mode                     *ProductionMode
	Outline                  *string
	Documents                *[]ReferenceDocument
	Batches                  *[]GenerationBatch
	HighestCompletedIndex    *int
	SelectedPrimarySourceID  *string
	SelectedLayoutTemplateID *string
	SelectedStyleTemplateID  *string
}

// UpdateProject applies u to the project with the given id.
func (s ApplicationState) UpdateProject(id string, u Update) (ApplicationState, error) {
	return s.withProject(id, func(p *Project) error {
		if u.Name != nil {
			name := strings.TrimSpace(*u.Name)
			if name == "" {
				return fmt.Errorf("%w: project name required", ErrInvalidInput)
			}
			p.Name = name
		}
		if u.Mode != nil {
			if !u.Mode.valid() {
				return fmt.Errorf("%w: unknown production mode %q", ErrInvalidInput, *u.Mode)
			}
			p.Mode = *u.Mode
		}
		if u.Outline != nil {
			p.Outline = *u.Outline
		}
		if u.Documents != nil {
			p.Documents = append([]ReferenceDocument{}, (*u.Documents)...)
		}
		if u.Batches != nil {
			p.Batches = dedupeBatches(*u.Batches)
		}
		if u.HighestCompletedIndex != nil {
			if *u.HighestCompletedIndex < 0 {
				return fmt.Errorf("%w: highest completed index must be >= 0", ErrInvalidInput)
			}
			p.HighestCompletedIndex = *u.HighestCompletedIndex
		}
		selections := []struct {
			role DocumentRole
			id   *string
		}{
			{RolePrimarySource, u.SelectedPrimarySourceID},
			{RoleLayoutTemplate, u.SelectedLayoutTemplateID},
			{RoleStyleTemplate, u.SelectedStyleTemplateID},
		}
		for _, sel := range selections {
			if sel.id == nil {
				continue
			}
			if *sel.id != "" {
				doc, ok := p.Document(*sel.id)
				if !ok {
					return fmt.Errorf("%w: %s", ErrDocumentNotFound, *sel.id)
				}
				if doc.Role != sel.role {
					return fmt.Errorf("%w: %s is %s", ErrRoleMismatch, doc.Name, doc.Role.Label())
				}
			}
			p.setSelection(sel.role, *sel.id)
		}
		return nil
	})
}

// AddDocuments appends documents to a project. When select is true each
// document becomes the selection for its role.
func (s ApplicationState) AddDocuments(id string, selectThem bool, docs ...ReferenceDocument) (ApplicationState, error) {
	return s.withProject(id, func(p *Project) error {
		for _, doc := range docs {
			if !doc.Role.Valid() {
				return fmt.Errorf("%w: unknown document role %q", ErrInvalidInput, doc.Role)
			}
			if doc.ID == "" {
				doc.ID = uuid.NewString()
			}
			p.Documents = append(p.Documents, doc)
			if selectThem {
				p.setSelection(doc.Role, doc.ID)
			}
		}
		return nil
	})
}

// RemoveDocument deletes a document. A selection pointing at it is cleared.
func (s ApplicationState) RemoveDocument(id, docID string) (ApplicationState, error) {
	return s.withProject(id, func(p *Project) error {
		idx := -1
		for i, doc := range p.Documents {
			if doc.ID == docID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
		}
		p.Documents = append(p.Documents[:idx], p.Documents[idx+1:]...)
		for _, role := range allRoles {
			if p.SelectionID(role) == docID {
				p.setSelection(role, "")
			}
		}
		return nil
	})
}

// SelectDocument makes docID the selection for its own role.
func (s ApplicationState) SelectDocument(id, docID string) (ApplicationState, error) {
	return s.withProject(id, func(p *Project) error {
		doc, ok := p.Document(docID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrDocumentNotFound, docID)
		}
		p.setSelection(doc.Role, doc.ID)
		return nil
	})
}

// SetOutline replaces the outline wholesale.
func (s ApplicationState) SetOutline(id, outline string) (ApplicationState, error) {
	return s.UpdateProject(id, Update{Outline: &outline})
}

// PutBatch stores a completed batch, replacing any batch at the same index,
// and advances the highest completed index.
func (s ApplicationState) PutBatch(id string, index int, content string, now time.Time) (ApplicationState, GenerationBatch, error) {
	if index < 1 {
		return s, GenerationBatch{}, fmt.Errorf("%w: sequence index must be >= 1", ErrInvalidInput)
	}
	batch := GenerationBatch{
		ID:            uuid.NewString(),
		SequenceIndex: index,
		Content:       content,
		Status:        StatusCompleted,
		UpdatedAt:     now.UTC(),
	}
	out, err := s.withProject(id, func(p *Project) error {
		p.Batches = replaceBatch(p.Batches, batch)
		if index > p.HighestCompletedIndex {
			p.HighestCompletedIndex = index
		}
		return nil
	})
	if err != nil {
		return s, GenerationBatch{}, err
	}
	return out, batch, nil
}

// RecordFailure stores a failed batch at index when nothing is stored there
// yet. An existing batch is left untouched and recorded is false.
func (s ApplicationState) RecordFailure(id string, index int, message string, now time.Time) (ApplicationState, bool, error) {
	if index < 1 {
		return s, false, fmt.Errorf("%w: sequence index must be >= 1", ErrInvalidInput)
	}
	recorded := false
	out, err := s.withProject(id, func(p *Project) error {
		if _, exists := p.Batch(index); exists {
			return nil
		}
		p.Batches = replaceBatch(p.Batches, GenerationBatch{
			ID:            uuid.NewString(),
			SequenceIndex: index,
			Status:        StatusFailed,
			ErrorMessage:  message,
			UpdatedAt:     now.UTC(),
		})
		recorded = true
		return nil
	})
	if err != nil {
		return s, false, err
	}
	return out, recorded, nil
}

func replaceBatch(batches []GenerationBatch, batch GenerationBatch) []GenerationBatch {
	out := make([]GenerationBatch, 0, len(batches)+1)
	for _, b := range batches {
		if b.SequenceIndex != batch.SequenceIndex {
			out = append(out, b)
		}
	}
	out = append(out, batch)
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceIndex < out[j].SequenceIndex })
	return out
}
