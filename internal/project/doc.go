// Package project holds the workshop data model and its state transitions.
//
// ApplicationState is an immutable value: every transition returns a new
// snapshot and leaves the receiver untouched, so callers can keep the
// previous state around and persistence can write whole snapshots.
//
// Batches are keyed by sequence index. Storing a batch replaces whatever was
// at that index, so a project never holds two batches for one index. The
// highest completed index only ever grows.
package project
