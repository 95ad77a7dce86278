// Package export writes outlines and batch scripts to files under the export
// directory, as UTF-8 text or as a minimal .docx package.
package export
