// Package pipeline sequences outline and batch generation for a project.
//
// A batch request combines the episode span for its index, the source window
// positioned by production progress, the carried tail of earlier completed
// batches and the accumulated summary extracted from the latest of them.
// Preconditions (a selected primary source, an outline for batches) are
// checked before the generation service is contacted.
//
// Only one request per project runs at a time; a concurrent request fails
// with GenerationInProgressError. Failed requests are not retried.
package pipeline
