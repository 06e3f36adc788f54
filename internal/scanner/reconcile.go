package scanner

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"cymap/internal/logging"
	"cymap/internal/state"
)

// reconcile corrects drift between the state document and ground truth:
// entries whose backing file vanished become missing (kept as audit
// records, never deleted), and entries the transcript oracle already knows
// about are upgraded to processed without re-running transcription.
// Returns the number of oracle upgrades and of newly missing entries.
func (s *Scanner) reconcile(day time.Time, doc state.Document) (reconciled, missing int) {
	for _, identity := range doc.Identities() {
		entry := doc[identity]

		if _, err := os.Stat(identity); errors.Is(err, fs.ErrNotExist) {
			if entry.Status == state.StatusMissing {
				continue
			}
			entry.Status = state.StatusMissing
			entry.TimeUpdated = time.Now()
			doc[identity] = entry
			missing++
			s.logger.Info("recording vanished from disk",
				logging.String(logging.FieldPath, identity),
				logging.String(logging.FieldStatus, string(state.StatusMissing)),
			)
			continue
		}

		if entry.Status == state.StatusProcessed || entry.Status == state.StatusMissing {
			continue
		}
		if s.oracle.HasTranscript(day, identity) {
			entry.Status = state.StatusProcessed
			entry.TimeUpdated = time.Now()
			doc[identity] = entry
			reconciled++
			s.logger.Info("transcript already exists, upgrading status",
				logging.String(logging.FieldPath, identity),
			)
		}
	}
	return reconciled, missing
}
