package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"scriptforge/internal/fileutil"
	"scriptforge/internal/project"
	"scriptforge/internal/textutil"
	"scriptforge/internal/window"
)

// Format is an export file format.
type Format string

const (
	FormatText Format = "txt"
	FormatDOCX Format = "docx"
)

// ParseFormat parses a format name; empty means text.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(value), "."))) {
	case "", FormatText:
		return FormatText, nil
	case FormatDOCX:
		return FormatDOCX, nil
	}
	return "", fmt.Errorf("%w: unsupported export format %q", project.ErrInvalidInput, value)
}

// OutlineFileName returns "<name>_大纲.<ext>".
func OutlineFileName(projectName string, f Format) string {
	return fmt.Sprintf("%s_大纲.%s", baseName(projectName), f)
}

// BatchFileName returns "<name>_脚本_<first>-<last>集.<ext>".
func BatchFileName(projectName string, episodes window.EpisodeRange, f Format) string {
	return fmt.Sprintf("%s_脚本_%d-%d集.%s", baseName(projectName), episodes.First, episodes.Last, f)
}

func baseName(projectName string) string {
	name := textutil.SanitizeFileName(projectName)
	if name == "" {
		return "untitled"
	}
	return name
}

// Write stores content as dir/name in format f and returns the written path.
// The file is replaced atomically.
func Write(dir, name, content string, f Format) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	var write func(io.Writer) error
	switch f {
	case FormatDOCX:
		write = func(w io.Writer) error { return writeDOCX(w, content) }
	default:
		write = func(w io.Writer) error {
			_, err := io.WriteString(w, content)
			return err
		}
	}
	if err := fileutil.WriteAtomic(path, 0o644, write); err != nil {
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	return path, nil
}
