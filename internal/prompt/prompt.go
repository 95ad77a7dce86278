package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"strings"
	"text/template"
)

//go:embed templates/*.tmpl
var builtin embed.FS

// DefaultLayout stands in for a missing layout template document.
const DefaultLayout = "标准排版"

// Options selects template overrides. Empty paths use the built-in templates.
type Options struct {
	OutlineTemplatePath string
	BatchTemplatePath   string
}

// OutlineData feeds the outline template.
type OutlineData struct {
	ModeLabel string
	Source    string
	Layout    string
	Style     string
}

// BatchData feeds the batch template.
type BatchData struct {
	ModeLabel     string
	First         int
	Last          int
	Summary       string
	PhasePlan     string
	Source        string
	Handoff       string
	Style         string
	SummaryMarker string
}

// Renderer renders request prompts. Templates are read and parsed once at
// construction.
type Renderer struct {
	outline *template.Template
	batch   *template.Template
}

// New parses the built-in templates or the configured overrides.
func New(opts Options) (*Renderer, error) {
	outline, err := load("outline", "templates/outline.tmpl", opts.OutlineTemplatePath)
	if err != nil {
		return nil, err
	}
	batch, err := load("batch", "templates/batch.tmpl", opts.BatchTemplatePath)
	if err != nil {
		return nil, err
	}
	return &Renderer{outline: outline, batch: batch}, nil
}

func load(name, builtinPath, overridePath string) (*template.Template, error) {
	var src []byte
	var err error
	if strings.TrimSpace(overridePath) != "" {
		src, err = os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("%s template read: %w", name, err)
		}
	} else {
		src, err = builtin.ReadFile(builtinPath)
		if err != nil {
			return nil, fmt.Errorf("%s template read: %w", name, err)
		}
	}
	tpl, err := template.New(name).Option("missingkey=error").Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("%s template parse: %w", name, err)
	}
	return tpl, nil
}

// Outline renders the outline request. A blank layout becomes DefaultLayout.
func (r *Renderer) Outline(data OutlineData) (string, error) {
	if strings.TrimSpace(data.Layout) == "" {
		data.Layout = DefaultLayout
	}
	return execute(r.outline, data)
}

// Batch renders a batch request.
func (r *Renderer) Batch(data BatchData) (string, error) {
	return execute(r.batch, data)
}

func execute(tpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%s template render: %w", tpl.Name(), err)
	}
	return buf.String(), nil
}
