// Package preflight provides readiness checks for the generation service and
// the filesystem paths scriptforge depends on.
//
// The CLI "scriptforge doctor" command runs RunAll and renders each Result.
// The LLM check issues one tiny completion and can be skipped for offline
// diagnostics.
package preflight
