package transcripts

import (
	"path/filepath"
	"strings"
	"time"
)

// Oracle answers whether a transcript already exists for a recording.
// The scanner and reconciler depend on this capability, not on transcript
// file internals, so the initial status of a rediscovered recording can be
// decided without re-running transcription.
type Oracle interface {
	HasTranscript(day time.Time, identity string) bool
}

// HasTranscript reports whether the day's document contains an entry for
// the recording. Matching is by filename suffix: transcripts store the full
// path as it was at transcription time, which may differ from the current
// mount prefix.
func (s *Store) HasTranscript(day time.Time, identity string) bool {
	name := filepath.Base(identity)
	if name == "" || name == "." {
		return false
	}
	for _, entry := range s.Load(day) {
		if strings.HasSuffix(entry.Path, name) {
			return true
		}
	}
	return false
}
