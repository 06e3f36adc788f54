package state_test

import (
	"testing"

	"cymap/internal/state"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  state.Status
		ok    bool
	}{
		{"queue", state.StatusQueue, true},
		{"Processing", state.StatusProcessing, true},
		{"  processed  ", state.StatusProcessed, true},
		{"ERROR", state.StatusError, true},
		{"missing", state.StatusMissing, true},
		{"", "", false},
		{"done", "", false},
	}
	for _, tc := range cases {
		got, ok := state.ParseStatus(tc.input)
		if ok != tc.ok {
			t.Fatalf("ParseStatus(%q) ok = %v, want %v", tc.input, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseStatus(%q) = %s, want %s", tc.input, got, tc.want)
		}
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from    state.Status
		to      state.Status
		allowed bool
	}{
		{state.StatusQueue, state.StatusProcessing, true},
		{state.StatusProcessing, state.StatusProcessed, true},
		{state.StatusProcessing, state.StatusError, true},
		{state.StatusProcessing, state.StatusProcessing, true},
		{state.StatusQueue, state.StatusProcessed, true},
		{state.StatusError, state.StatusProcessed, true},
		{state.StatusQueue, state.StatusMissing, true},
		{state.StatusProcessed, state.StatusMissing, true},
		{state.StatusProcessed, state.StatusQueue, false},
		{state.StatusProcessed, state.StatusProcessing, false},
		{state.StatusError, state.StatusQueue, false},
		{state.StatusMissing, state.StatusProcessing, false},
	}
	for _, tc := range cases {
		if got := state.CanTransition(tc.from, tc.to); got != tc.allowed {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.allowed)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	terminal := []state.Status{state.StatusProcessed, state.StatusError, state.StatusMissing}
	for _, status := range terminal {
		if !status.IsTerminal() {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	for _, status := range []state.Status{state.StatusQueue, state.StatusProcessing} {
		if status.IsTerminal() {
			t.Fatalf("expected %s to be non-terminal", status)
		}
	}
}

func TestFirstQueuedReturnsSortedFirst(t *testing.T) {
	doc := state.Document{
		"/rec/c.mp3": {Path: "/rec/c.mp3", Status: state.StatusQueue},
		"/rec/a.mp3": {Path: "/rec/a.mp3", Status: state.StatusProcessed},
		"/rec/b.mp3": {Path: "/rec/b.mp3", Status: state.StatusQueue},
	}

	identity, entry, ok := doc.FirstQueued()
	if !ok {
		t.Fatal("expected a queued entry")
	}
	if identity != "/rec/b.mp3" {
		t.Fatalf("expected first queued /rec/b.mp3, got %s", identity)
	}
	if entry.Status != state.StatusQueue {
		t.Fatalf("unexpected status %s", entry.Status)
	}
}

func TestFirstQueuedEmpty(t *testing.T) {
	doc := state.Document{
		"/rec/a.mp3": {Path: "/rec/a.mp3", Status: state.StatusProcessed},
	}
	if _, _, ok := doc.FirstQueued(); ok {
		t.Fatal("expected no queued entry")
	}
}

func TestCountByStatus(t *testing.T) {
	doc := state.Document{
		"/rec/a.mp3": {Status: state.StatusQueue},
		"/rec/b.mp3": {Status: state.StatusQueue},
		"/rec/c.mp3": {Status: state.StatusProcessed},
		"/rec/d.mp3": {Status: state.StatusMissing},
	}
	counts := doc.CountByStatus()
	if counts[state.StatusQueue] != 2 || counts[state.StatusProcessed] != 1 || counts[state.StatusMissing] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}
