// Package continuity carries prior output between batch requests.
//
// Two signals flow forward. The carried context is the tail of all completed
// batches before the one being generated, joined in sequence order. The
// accumulated summary is a section the model appends to each batch under a
// fixed heading; it is extracted best-effort and an absent heading simply
// means no summary.
package continuity
