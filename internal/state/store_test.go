package state_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cymap/internal/logging"
	"cymap/internal/state"
)

func testDay() time.Time {
	return time.Date(2025, time.March, 14, 12, 0, 0, 0, time.Local)
}

func newEntry(path string, status state.Status) state.Entry {
	hash := "d41d8cd98f00b204e9800998ecf8427e"
	now := time.Now()
	return state.Entry{
		Path:        path,
		Hash:        &hash,
		Status:      status,
		TimeAdded:   now,
		TimeUpdated: now,
		Group:       "CYRIDE-CIRC",
	}
}

func TestLoadMissingDocumentReturnsEmpty(t *testing.T) {
	store := state.NewStore(t.TempDir(), logging.NewNop())

	doc, err := store.Load(testDay())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty document, got %d entries", len(doc))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := state.NewStore(t.TempDir(), logging.NewNop())
	day := testDay()

	doc := state.Document{
		"/rec/a.mp3": newEntry("/rec/a.mp3", state.StatusQueue),
		"/rec/b.mp3": newEntry("/rec/b.mp3", state.StatusProcessed),
	}
	if err := store.Save(day, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(day)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(loaded))
	}
	entry := loaded["/rec/a.mp3"]
	if entry.Status != state.StatusQueue {
		t.Fatalf("expected queue status, got %s", entry.Status)
	}
	if entry.Hash == nil || *entry.Hash == "" {
		t.Fatal("expected hash to survive round trip")
	}
	if entry.Group != "CYRIDE-CIRC" {
		t.Fatalf("expected group to survive round trip, got %q", entry.Group)
	}
}

func TestConcurrentLoadNeverSeesPartialWrite(t *testing.T) {
	store := state.NewStore(t.TempDir(), logging.NewNop())
	day := testDay()

	if err := store.Save(day, state.Document{
		"/rec/a.mp3": newEntry("/rec/a.mp3", state.StatusQueue),
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			doc := state.Document{
				"/rec/a.mp3": newEntry("/rec/a.mp3", state.StatusQueue),
				"/rec/b.mp3": newEntry("/rec/b.mp3", state.StatusProcessed),
			}
			if err := store.Save(day, doc); err != nil {
				t.Errorf("Save: %v", err)
				return
			}
		}
	}()

	// A reader must see either the old or the new complete document,
	// never a fragment.
	for i := 0; i < 200; i++ {
		doc, err := store.Load(day)
		if err != nil {
			t.Fatalf("Load during concurrent save: %v", err)
		}
		if len(doc) != 1 && len(doc) != 2 {
			t.Fatalf("unexpected document size %d", len(doc))
		}
	}
	<-done
}

func TestDocumentPathLayout(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, logging.NewNop())

	got := store.DocumentPath(testDay())
	want := filepath.Join(dir, "2025", "03", "14.json")
	if got != want {
		t.Fatalf("DocumentPath = %q, want %q", got, want)
	}
}

func TestLoadCorruptDocumentIsUnreadable(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, logging.NewNop())
	day := testDay()

	path := store.DocumentPath(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("{ truncated"), 0o644); err != nil {
		t.Fatalf("write corrupt document: %v", err)
	}

	_, err := store.Load(day)
	if !errors.Is(err, state.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable, got %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, logging.NewNop())
	day := testDay()

	doc := state.Document{"/rec/a.mp3": newEntry("/rec/a.mp3", state.StatusQueue)}
	if err := store.Save(day, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(store.DocumentPath(day)))
	if err != nil {
		t.Fatalf("read day dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".json") && entry.Name() == "14.json" {
			continue
		}
		t.Fatalf("unexpected leftover file %q", entry.Name())
	}
}

func TestUpdateStatusTransitions(t *testing.T) {
	store := state.NewStore(t.TempDir(), logging.NewNop())
	day := testDay()
	identity := "/rec/a.mp3"

	doc := state.Document{identity: newEntry(identity, state.StatusQueue)}
	if err := store.Save(day, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := store.UpdateStatus(day, identity, state.StatusProcessing, 1); err != nil {
		t.Fatalf("queue -> processing: %v", err)
	}
	if err := store.UpdateStatus(day, identity, state.StatusProcessed, 1); err != nil {
		t.Fatalf("processing -> processed: %v", err)
	}

	loaded, err := store.Load(day)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded[identity].Status; got != state.StatusProcessed {
		t.Fatalf("expected processed, got %s", got)
	}
	if !loaded[identity].TimeUpdated.After(loaded[identity].TimeAdded) {
		t.Fatal("expected TimeUpdated to advance past TimeAdded")
	}
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	store := state.NewStore(t.TempDir(), logging.NewNop())
	day := testDay()
	identity := "/rec/a.mp3"

	doc := state.Document{identity: newEntry(identity, state.StatusProcessed)}
	if err := store.Save(day, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	err := store.UpdateStatus(day, identity, state.StatusQueue, 1)
	if err == nil {
		t.Fatal("expected illegal transition error")
	}
}

func TestUpdateStatusUnknownIdentity(t *testing.T) {
	store := state.NewStore(t.TempDir(), logging.NewNop())
	day := testDay()

	if err := store.Save(day, state.Document{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.UpdateStatus(day, "/rec/ghost.mp3", state.StatusProcessing, 1); err == nil {
		t.Fatal("expected error for untracked identity")
	}
}

func TestUpdateStatusDoesNotResetCorruptDocument(t *testing.T) {
	dir := t.TempDir()
	store := state.NewStore(dir, logging.NewNop())
	day := testDay()

	path := store.DocumentPath(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	corrupt := []byte("not json at all")
	if err := os.WriteFile(path, corrupt, 0o644); err != nil {
		t.Fatalf("write corrupt document: %v", err)
	}

	err := store.UpdateStatus(day, "/rec/a.mp3", state.StatusProcessing, 2)
	if !errors.Is(err, state.ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable after retries, got %v", err)
	}

	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("re-read document: %v", readErr)
	}
	if string(data) != string(corrupt) {
		t.Fatal("corrupt document was overwritten")
	}
}

func TestWriteProbe(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "states")
	store := state.NewStore(dir, logging.NewNop())

	if err := store.WriteProbe(); err != nil {
		t.Fatalf("WriteProbe: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".perm_test")); !os.IsNotExist(err) {
		t.Fatal("probe file was not cleaned up")
	}
}
