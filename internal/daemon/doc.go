// Package daemon combines the recording scanner, transcription worker,
// location poller, and dashboard server into a single lifecycle with
// flock-based locking to prevent multiple instances.
package daemon
