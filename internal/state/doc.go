// Package state persists per-day recording status documents.
//
// Each calendar day owns one JSON document mapping recording paths to their
// processing entry (status, content hash, timestamps, source group). The
// documents are the only coordination point between the scanner, the
// transcription worker, and external readers such as the dashboard, so the
// store guarantees two things: writes are atomic whole-document replacements,
// and an unreadable document is surfaced as ErrUnreadable rather than an
// empty one. Treating a failed read as empty once caused every known
// recording to be re-queued; the sentinel keeps that failure mode out.
package state
