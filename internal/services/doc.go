// Package services defines the error taxonomy shared by components that
// call external tools (ffmpeg, whisper) and the helpers that classify
// failures as per-item or fatal.
package services
