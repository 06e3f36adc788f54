package state

import (
	"sort"
	"strings"
	"time"
)

// Status represents the processing lifecycle of a tracked recording.
type Status string

const (
	// StatusQueue marks a recording awaiting transcription.
	StatusQueue Status = "queue"
	// StatusProcessing marks a recording claimed by the worker.
	StatusProcessing Status = "processing"
	// StatusProcessed marks a recording with a persisted transcript.
	StatusProcessed Status = "processed"
	// StatusError marks a recording whose preparation or transcription
	// failed. Terminal from the worker's perspective; re-queueing is an
	// explicit external action.
	StatusError Status = "error"
	// StatusMissing marks a recording whose backing file vanished from
	// disk. Terminal; the entry is kept as an audit record.
	StatusMissing Status = "missing"
)

var allStatuses = []Status{
	StatusQueue,
	StatusProcessing,
	StatusProcessed,
	StatusError,
	StatusMissing,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether the worker will never act on the status again.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusProcessed, StatusError, StatusMissing:
		return true
	default:
		return false
	}
}

type statusTransition struct {
	from Status
	to   Status
}

var allowedTransitions = map[statusTransition]struct{}{
	{from: StatusQueue, to: StatusProcessing}:      {},
	{from: StatusProcessing, to: StatusProcessed}:  {},
	{from: StatusProcessing, to: StatusError}:      {},
	{from: StatusQueue, to: StatusProcessed}:       {}, // reconciler: transcript already exists
	{from: StatusProcessing, to: StatusProcessing}: {}, // re-claim after interrupted run
	{from: StatusError, to: StatusProcessed}:       {}, // reconciler: out-of-band transcript
}

// CanTransition reports whether the status change is legal. Any status may
// move to missing when the backing file disappears.
func CanTransition(from, to Status) bool {
	if to == StatusMissing {
		return true
	}
	_, ok := allowedTransitions[statusTransition{from: from, to: to}]
	return ok
}

// Entry is one record per recording identity within a day's document.
// Field names match the on-disk JSON contract shared with external readers.
type Entry struct {
	Path        string    `json:"Path"`
	Hash        *string   `json:"Hash"`
	Status      Status    `json:"status"`
	TimeAdded   time.Time `json:"TimeAdded"`
	TimeUpdated time.Time `json:"TimeUpdated"`
	Group       string    `json:"Group"`
}

// Document maps recording identities (absolute paths) to their entries for
// one calendar day. It is always read, mutated, and written as a whole.
type Document map[string]Entry

// Identities returns the document keys in sorted order.
func (d Document) Identities() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// FirstQueued returns the first entry with status queue in sorted identity
// order, if any.
func (d Document) FirstQueued() (string, Entry, bool) {
	for _, key := range d.Identities() {
		if entry := d[key]; entry.Status == StatusQueue {
			return key, entry, true
		}
	}
	return "", Entry{}, false
}

// CountByStatus tallies entries per status.
func (d Document) CountByStatus() map[Status]int {
	counts := make(map[Status]int, len(allStatuses))
	for _, entry := range d {
		counts[entry.Status]++
	}
	return counts
}
