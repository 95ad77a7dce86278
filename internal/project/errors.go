package project

import "errors"

// kindError is a sentinel that classifies itself for the boundary layer.
type kindError struct {
	kind string
	msg  string
}

func (e *kindError) Error() string     { return e.msg }
func (e *kindError) ErrorKind() string { return e.kind }

var (
	// ErrProjectNotFound indicates an unknown project id.
	ErrProjectNotFound error = &kindError{kind: "not_found", msg: "project not found"}
	// ErrDocumentNotFound indicates an unknown document id within a project.
	ErrDocumentNotFound error = &kindError{kind: "not_found", msg: "document not found"}
	// ErrRoleMismatch indicates a selection pointing at a document of another role.
	ErrRoleMismatch error = &kindError{kind: "validation", msg: "document role does not match selection"}
	// ErrNoPrimarySource indicates the workspace was entered without a primary source document.
	ErrNoPrimarySource error = &kindError{kind: "validation", msg: "project has no primary source document"}
	// ErrNoActiveProject indicates an operation needed an active project.
	ErrNoActiveProject error = &kindError{kind: "validation", msg: "no active project"}
	// ErrInvalidInput covers malformed names, roles, modes and indices.
	ErrInvalidInput error = &kindError{kind: "validation", msg: "invalid input"}
)

// IsNotFound reports whether err refers to a missing project or document.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrDocumentNotFound)
}
