// Package whisper wraps the offline Whisper speech-to-text CLI behind an
// injectable command runner so the worker loop can be tested without the
// engine installed.
package whisper
