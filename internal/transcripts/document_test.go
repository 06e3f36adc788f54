package transcripts_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cymap/internal/logging"
	"cymap/internal/transcripts"
)

func testDay() time.Time {
	return time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local)
}

func newEntry(path, text string) transcripts.Entry {
	hash := "abc123"
	return transcripts.Entry{
		Path:     path,
		Time:     time.Now(),
		Duration: 4.2,
		Text:     text,
		Hash:     &hash,
	}
}

func TestAppendAndLoadPreservesOrder(t *testing.T) {
	store := transcripts.NewStore(t.TempDir(), logging.NewNop())
	day := testDay()

	if err := store.Append(day, newEntry("/rec/08_15_30-981.mp3", "ten four")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(day, newEntry("/rec/08_16_02-981.mp3", "copy that")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries := store.Load(day)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Text != "ten four" || entries[1].Text != "copy that" {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if entries[0].Hash == nil || *entries[0].Hash != "abc123" {
		t.Fatal("hash did not survive round trip")
	}
}

func TestLoadAbsentDocument(t *testing.T) {
	store := transcripts.NewStore(t.TempDir(), logging.NewNop())
	if entries := store.Load(testDay()); entries != nil {
		t.Fatalf("expected nil for absent document, got %v", entries)
	}
}

func TestLoadCorruptDocumentYieldsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := transcripts.NewStore(dir, logging.NewNop())
	day := testDay()

	path := store.DocumentPath(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("[{ truncated"), 0o644); err != nil {
		t.Fatalf("write corrupt document: %v", err)
	}

	if entries := store.Load(day); entries != nil {
		t.Fatalf("expected nil for corrupt document, got %v", entries)
	}
}

func TestDocumentIsJSONArrayOnDisk(t *testing.T) {
	store := transcripts.NewStore(t.TempDir(), logging.NewNop())
	day := testDay()

	if err := store.Append(day, newEntry("/rec/08_15_30-981.mp3", "ten four")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(store.DocumentPath(day))
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("document is not a JSON array: %v", err)
	}
	for _, key := range []string{"Path", "Time", "Duration", "Text", "Hash"} {
		if _, ok := raw[0][key]; !ok {
			t.Fatalf("document entry missing %q field", key)
		}
	}
}

func TestHasTranscriptMatchesByFilename(t *testing.T) {
	store := transcripts.NewStore(t.TempDir(), logging.NewNop())
	day := testDay()

	if err := store.Append(day, newEntry("/old-mount/CYRIDE-CIRC/2025/03/14/08_15_30-981.mp3", "ten four")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	if !store.HasTranscript(day, "/new-mount/CYRIDE-CIRC/2025/03/14/08_15_30-981.mp3") {
		t.Fatal("expected suffix match across mount prefixes")
	}
	if store.HasTranscript(day, "/new-mount/CYRIDE-CIRC/2025/03/14/09_00_00-981.mp3") {
		t.Fatal("unexpected match for different recording")
	}
	if store.HasTranscript(day.AddDate(0, 0, 1), "/new-mount/CYRIDE-CIRC/2025/03/14/08_15_30-981.mp3") {
		t.Fatal("unexpected match on a different day")
	}
}
