package project

import (
	"sort"

	"github.com/google/uuid"
)

// NewDocument builds a reference document with a fresh id.
func NewDocument(name string, role DocumentRole, content, mediaType string) ReferenceDocument {
	return ReferenceDocument{
		ID:        uuid.NewString(),
		Name:      name,
		Role:      role,
		Content:   content,
		MediaType: mediaType,
	}
}

// Document returns the document with the given id.
func (p Project) Document(id string) (ReferenceDocument, bool) {
	for _, doc := range p.Documents {
		if doc.ID == id {
			return doc, true
		}
	}
	return ReferenceDocument{}, false
}

// DocumentsByRole returns the documents tagged with role, in upload order.
func (p Project) DocumentsByRole(role DocumentRole) []ReferenceDocument {
	var out []ReferenceDocument
	for _, doc := range p.Documents {
		if doc.Role == role {
			out = append(out, doc)
		}
	}
	return out
}

// SelectionID returns the raw selection pointer for role.
func (p Project) SelectionID(role DocumentRole) string {
	switch role {
	case RolePrimarySource:
		return p.SelectedPrimarySourceID
	case RoleLayoutTemplate:
		return p.SelectedLayoutTemplateID
	case RoleStyleTemplate:
		return p.SelectedStyleTemplateID
	}
	return ""
}

func (p *Project) setSelection(role DocumentRole, id string) {
	switch role {
	case RolePrimarySource:
		p.SelectedPrimarySourceID = id
	case RoleLayoutTemplate:
		p.SelectedLayoutTemplateID = id
	case RoleStyleTemplate:
		p.SelectedStyleTemplateID = id
	}
}

// Selected resolves the selection for role. A pointer to a missing document
// or to a document of another role counts as unset.
func (p Project) Selected(role DocumentRole) (ReferenceDocument, bool) {
	id := p.SelectionID(role)
	if id == "" {
		return ReferenceDocument{}, false
	}
	doc, ok := p.Document(id)
	if !ok || doc.Role != role {
		return ReferenceDocument{}, false
	}
	return doc, true
}

// HasPrimarySource reports whether any primary source document was uploaded.
func (p Project) HasPrimarySource() bool {
	return len(p.DocumentsByRole(RolePrimarySource)) > 0
}

// Batch returns the stored batch at index.
func (p Project) Batch(index int) (GenerationBatch, bool) {
	for _, b := range p.Batches {
		if b.SequenceIndex == index {
			return b, true
		}
	}
	return GenerationBatch{}, false
}

// SortedBatches returns the batches ordered by ascending sequence index.
func (p Project) SortedBatches() []GenerationBatch {
	out := append([]GenerationBatch(nil), p.Batches...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SequenceIndex < out[j].SequenceIndex })
	return out
}

// CompletedBefore returns completed batches with a sequence index below
// index, in ascending order.
func (p Project) CompletedBefore(index int) []GenerationBatch {
	var out []GenerationBatch
	for _, b := range p.SortedBatches() {
		if b.SequenceIndex < index && b.Completed() {
			out = append(out, b)
		}
	}
	return out
}

// NextSequenceIndex is the index offered by default to continue generation.
func (p Project) NextSequenceIndex() int {
	return p.HighestCompletedIndex + 1
}
