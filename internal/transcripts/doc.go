// Package transcripts persists per-day transcription results and answers
// "has this recording already been transcribed" for the scanner and
// reconciler. Documents are JSON arrays partitioned by calendar day, written
// atomically, and append-only from the worker's perspective.
package transcripts
