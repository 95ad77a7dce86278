package main

import (
	"errors"

	"scriptforge/internal/pipeline"
	"scriptforge/internal/project"
)

type errorClassifier interface {
	ErrorKind() string
}

// errorHint suggests the next step for a failed command.
func errorHint(err error) string {
	var missingSel *pipeline.MissingSelectionError
	var missingOutline *pipeline.MissingOutlineError
	switch {
	case errors.As(err, &missingSel):
		return "Hint: list documents with `scriptforge doc list` and pick one with `scriptforge doc select <doc-id>`."
	case errors.As(err, &missingOutline):
		return "Hint: run `scriptforge outline generate` first."
	case errors.Is(err, project.ErrNoActiveProject):
		return "Hint: select a project with `scriptforge project select <id>` or pass --project."
	case errors.Is(err, project.ErrNoPrimarySource):
		return "Hint: add the novel with `scriptforge doc add <file> --role primary`."
	}
	var classifier errorClassifier
	if !errors.As(err, &classifier) {
		return ""
	}
	switch classifier.ErrorKind() {
	case "conflict":
		return "Hint: another generation for this project is still running; wait for it to finish."
	case "external":
		return "Hint: the generation service failed; nothing stored was overwritten. Re-run the same command to retry."
	case "not_found":
		return "Hint: `scriptforge project list` and `scriptforge doc list` show valid ids."
	}
	return ""
}
