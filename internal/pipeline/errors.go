package pipeline

import (
	"fmt"

	"scriptforge/internal/project"
)

// MissingSelectionError reports that a required reference document is not
// selected. It is raised before the generation service is contacted.
type MissingSelectionError struct {
	Role project.DocumentRole
}

func (e *MissingSelectionError) Error() string {
	return fmt.Sprintf("missing selection: no %s (%s) selected", e.Role.Label(), e.Role)
}

// ErrorKind classifies the failure for the boundary layer.
func (e *MissingSelectionError) ErrorKind() string { return "validation" }

// MissingOutlineError reports a batch request on a project without an outline.
type MissingOutlineError struct {
	ProjectID string
}

func (e *MissingOutlineError) Error() string {
	return fmt.Sprintf("missing outline: project %s has no outline yet", e.ProjectID)
}

// ErrorKind classifies the failure for the boundary layer.
func (e *MissingOutlineError) ErrorKind() string { return "validation" }

// GenerationInProgressError reports that another outline or batch request
// for the same project has not finished.
type GenerationInProgressError struct {
	ProjectID string
}

func (e *GenerationInProgressError) Error() string {
	return fmt.Sprintf("generation already in progress for project %s", e.ProjectID)
}

// ErrorKind classifies the failure for the boundary layer.
func (e *GenerationInProgressError) ErrorKind() string { return "conflict" }
