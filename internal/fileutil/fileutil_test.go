package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"cymap/internal/fileutil"
)

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.mp3")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	digest, err := fileutil.HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	// md5("hello")
	if digest != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected digest %q", digest)
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, err := fileutil.HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestWriteAtomicCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "doc.json")
	if err := fileutil.WriteAtomic(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteAtomic: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "{}" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestWriteAtomicReplacesAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")

	if err := fileutil.WriteAtomic(path, []byte("one"), 0o644); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := fileutil.WriteAtomic(path, []byte("two"), 0o644); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "two" {
		t.Fatalf("unexpected content %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}
