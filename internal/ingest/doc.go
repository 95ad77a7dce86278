// Package ingest reduces uploaded reference files to plain text.
//
// Supported inputs are plain text (.txt, .md and anything unrecognised),
// .docx and .pdf. Text files may be UTF-8, BOM-marked UTF-16 or GB18030.
// Output is NFC-normalized with LF line endings; the pipeline treats it as
// opaque source content.
package ingest
