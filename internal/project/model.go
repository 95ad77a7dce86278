package project

import (
	"fmt"
	"strings"
	"time"
)

// DocumentRole tags what a reference document is used for.
type DocumentRole string

const (
	RolePrimarySource  DocumentRole = "primary_source"
	RoleLayoutTemplate DocumentRole = "layout_template"
	RoleStyleTemplate  DocumentRole = "style_template"
)

var allRoles = []DocumentRole{RolePrimarySource, RoleLayoutTemplate, RoleStyleTemplate}

// Roles returns every document role in display order.
func Roles() []DocumentRole {
	return append([]DocumentRole(nil), allRoles...)
}

// Label returns the display label for the role.
func (r DocumentRole) Label() string {
	switch r {
	case RolePrimarySource:
		return "原著小说"
	case RoleLayoutTemplate:
		return "排版参考"
	case RoleStyleTemplate:
		return "文笔参考"
	default:
		return string(r)
	}
}

// Valid reports whether r is a known role.
func (r DocumentRole) Valid() bool {
	for _, role := range allRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ParseRole accepts the stored role names and the short forms primary,
// layout and style.
func ParseRole(value string) (DocumentRole, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "primary", "source", string(RolePrimarySource):
		return RolePrimarySource, nil
	case "layout", string(RoleLayoutTemplate):
		return RoleLayoutTemplate, nil
	case "style", string(RoleStyleTemplate):
		return RoleStyleTemplate, nil
	}
	return "", fmt.Errorf("%w: unknown document role %q", ErrInvalidInput, value)
}

// ProductionMode selects the audience channel a project is written for.
type ProductionMode string

const (
	ModeMale   ProductionMode = "male"
	ModeFemale ProductionMode = "female"
)

// DefaultMode is assigned to new projects.
const DefaultMode = ModeMale

// Label returns the display label for the mode.
func (m ProductionMode) Label() string {
	switch m {
	case ModeFemale:
		return "女频"
	default:
		return "男频"
	}
}

// ParseMode parses a production mode name.
func ParseMode(value string) (ProductionMode, error) {
	switch ProductionMode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeMale:
		return ModeMale, nil
	case ModeFemale:
		return ModeFemale, nil
	}
	return "", fmt.Errorf("%w: unknown production mode %q", ErrInvalidInput, value)
}

// Screen is the navigation stage the client is on.
type Screen string

const (
	ScreenManagement    Screen = "management"
	ScreenKnowledgeBase Screen = "knowledge_base"
	ScreenWorkspace     Screen = "workspace"
)

func (s Screen) valid() bool {
	return s == ScreenManagement || s == ScreenKnowledgeBase || s == ScreenWorkspace
}

// BatchStatus is the lifecycle state of a generation batch.
type BatchStatus string

const (
	// StatusPending marks an in-flight request. It is never persisted.
	StatusPending   BatchStatus = "pending"
	StatusCompleted BatchStatus = "completed"
	StatusFailed    BatchStatus = "failed"
)

// ReferenceDocument is an ingested source text. Documents are immutable once
// created.
type ReferenceDocument struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Role      DocumentRole `json:"role"`
	Content   string       `json:"content"`
	MediaType string       `json:"media_type"`
}

// GenerationBatch is the stored result for one sequence index.
type GenerationBatch struct {
	ID            string      `json:"id"`
	SequenceIndex int         `json:"sequence_index"`
	Content       string      `json:"content"`
	Status        BatchStatus `json:"status"`
	ErrorMessage  string      `json:"error_message,omitempty"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Completed reports whether the batch holds a successful result.
func (b GenerationBatch) Completed() bool {
	return b.Status == StatusCompleted
}

// Project owns its documents, outline and batches.
type Project struct {
	ID                       string              `json:"id"`
	Name                     string              `json:"name"`
	CreatedAt                time.Time           `json:"created_at"`
	Documents                []ReferenceDocument `json:"documents"`
	Outline                  string              `json:"outline"`
	Batches                  []GenerationBatch   `json:"batches"`
	HighestCompletedIndex    int                 `json:"highest_completed_index"`
	Mode                     ProductionMode      `json:"mode"`
	SelectedPrimarySourceID  string              `json:"selected_primary_source_id,omitempty"`
	SelectedLayoutTemplateID string              `json:"selected_layout_template_id,omitempty"`
	SelectedStyleTemplateID  string              `json:"selected_style_template_id,omitempty"`
}

// ApplicationState is the unit of persistence.
type ApplicationState struct {
	Projects        []Project `json:"projects"`
	ActiveProjectID string    `json:"active_project_id,omitempty"`
	CurrentScreen   Screen    `json:"current_screen"`
}

// Empty returns a fresh state with no projects.
func Empty() ApplicationState {
	return ApplicationState{Projects: []Project{}, CurrentScreen: ScreenManagement}
}
