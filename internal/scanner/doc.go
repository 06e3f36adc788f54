// Package scanner discovers scanner-radio recordings on disk, registers
// them as queued work in the per-day state documents, projects new
// identities into the queue ledger, and reconciles state drift (vanished
// files, out-of-band transcripts) on every pass.
package scanner
