// Package statestore persists the application state as a single JSON document
// in a SQLite key/value table.
//
// The document lives under StateKey in <data_dir>/state.db. Store keeps the
// last loaded snapshot in memory for reads. Mutate serializes writers across
// processes with a flock on <data_dir>/state.lock and reloads the document
// before applying a transition, so an invocation that spent minutes waiting
// on a generation request cannot overwrite changes another invocation made
// in the meantime.
//
// An unreadable document is logged at WARN and treated as empty state.
package statestore
