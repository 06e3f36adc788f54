// Package worker runs the transcription loop: it selects one queued
// recording at a time from the lookback window of state documents, claims
// it, runs audio preparation and the speech-to-text engine, persists the
// transcript, and finalizes the recording's status.
package worker
