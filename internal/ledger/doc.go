// Package ledger maintains the append-only queue.lst projection of queued
// recording identities for external, schema-agnostic consumers.
package ledger
