package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

const maxConcurrentExtractions = 4

// Document is an ingested file reduced to plain text.
type Document struct {
	Name      string
	MediaType string
	Content   string
}

// Extractor turns uploaded files into plain text.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Base(path))
}

// ExtractBytes extracts text from content, choosing the decoder by the
// extension of name. Unknown extensions are read as plain text.
func (e *Extractor) ExtractBytes(content []byte, name string) (Document, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = extractPDF(content)
	case ".docx":
		text, err = extractDOCX(content)
	default:
		text, err = extractPlain(content)
	}
	if err != nil {
		return Document{}, fmt.Errorf("extract %s: %w", name, err)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return Document{
		Name:      name,
		MediaType: MediaType(ext),
		Content:   norm.NFC.String(text),
	}, nil
}

// ExtractAll extracts every path concurrently. Results keep the input order;
// the first failure cancels the rest.
func (e *Extractor) ExtractAll(ctx context.Context, paths []string) ([]Document, error) {
	docs := make([]Document, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentExtractions)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := e.Extract(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// MediaType maps a file extension to the stored media type.
func MediaType(ext string) string {
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".md":
		return "text/markdown"
	default:
		return "text/plain"
	}
}
