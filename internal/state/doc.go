// Package state persists what a build must remember for the next one: the
// source fingerprint of every node that was rendered, and a log of build
// events.
//
// SQLiteStore is the on-disk implementation used by the CLI; MemoryStore
// backs tests and one-shot builds without a state file.
package state
