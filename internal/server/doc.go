// Package server hosts the dispatch-log dashboard: a single embedded page,
// the transcript data API it reads, and static serving of the recordings
// directory so the browser can play audio.
package server
