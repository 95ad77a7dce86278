// Command scriptforge turns a long novel into a staged adaptation outline and
// a sequence of short-drama script batches.
//
// Projects live in a local SQLite state file. Typical flow:
//
//	scriptforge project create 霸道总裁
//	scriptforge doc add novel.txt --role primary --select
//	scriptforge doc add layout.docx --role layout --select
//	scriptforge workspace
//	scriptforge outline generate
//	scriptforge batch next
//	scriptforge batch export 1 --format docx
//
// Every command that reads project state accepts --project to target a
// project other than the active one.
package main
