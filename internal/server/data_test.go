package server_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cymap/internal/locations"
	"cymap/internal/logging"
	"cymap/internal/server"
	"cymap/internal/testsupport"
	"cymap/internal/transcripts"
)

type dataEntry struct {
	Time      string
	Group     string
	BusID     string
	Text      string
	AudioPath string
	Route     string
	Color     string
	Location  *struct {
		Lat     float64
		Long    float64
		Heading float64
		Speed   float64
	}
}

type dataResponse struct {
	Status struct {
		Mounted bool `json:"mounted"`
	} `json:"status"`
	Entries []dataEntry `json:"entries"`
}

func startServer(t *testing.T) (*server.Server, string, *transcripts.Store, string, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	logger := logging.NewNop()
	ts := transcripts.NewStore(cfg.Paths.TranscriptDir, logger)
	srv := server.New(cfg, ts, locations.NewReader(cfg.Paths.LocationDir), logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Stop)

	return srv, "http://" + srv.Addr(), ts, cfg.Paths.BaseDir, cfg.Paths.LocationDir
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestDataEndpointEnrichesEntries(t *testing.T) {
	_, base, ts, baseDir, locationDir := startServer(t)
	day := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local)

	audioPath := filepath.Join(baseDir, "SDR Recordings", "CYRIDE-CIRC", "2025", "03", "14", "08_15_30-981.mp3")
	if err := ts.Append(day, transcripts.Entry{
		Path: audioPath,
		Time: time.Now(),
		Text: "ten four",
	}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	snapDir := filepath.Join(locationDir, "2025", "03", "14")
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	snapshot := locations.Snapshot{Vehicles: []locations.Vehicle{{
		Name:           "981",
		Lat:            42.02,
		Lon:            -93.64,
		HeadingDegrees: 90,
		Speed:          23.5,
		RouteName:      "Red West",
		RouteColor:     "#c8102e",
	}}}
	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	if err := os.WriteFile(filepath.Join(snapDir, "08-15-32.json"), data, 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	var response dataResponse
	getJSON(t, base+"/api/data?date=2025-03-14", &response)

	if !response.Status.Mounted {
		t.Fatal("expected mounted=true for an existing base dir")
	}
	if len(response.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(response.Entries))
	}

	entry := response.Entries[0]
	if entry.Time != "08:15:30 AM" {
		t.Fatalf("Time = %q", entry.Time)
	}
	if entry.Group != "CIRC" {
		t.Fatalf("Group = %q", entry.Group)
	}
	if entry.BusID != "981" {
		t.Fatalf("BusID = %q", entry.BusID)
	}
	if entry.Route != "Red West" || entry.Color != "#c8102e" {
		t.Fatalf("route enrichment missing: %+v", entry)
	}
	if entry.Location == nil || entry.Location.Lat != 42.02 || entry.Location.Long != -93.64 {
		t.Fatalf("location enrichment missing: %+v", entry.Location)
	}
	if strings.HasPrefix(entry.AudioPath, baseDir) {
		t.Fatalf("AudioPath %q should be relative to the base dir", entry.AudioPath)
	}
	if !strings.HasPrefix(entry.AudioPath, "/") {
		t.Fatalf("AudioPath %q should start with /", entry.AudioPath)
	}
}

func TestDataEndpointWithoutLocation(t *testing.T) {
	_, base, ts, baseDir, _ := startServer(t)
	day := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local)

	audioPath := filepath.Join(baseDir, "SDR Recordings", "CYRIDE-FIXED", "2025", "03", "14", "14_05_09-44.mp3")
	if err := ts.Append(day, transcripts.Entry{Path: audioPath, Time: time.Now(), Text: "copy"}); err != nil {
		t.Fatalf("Append: %v", err)
	}

	var response dataResponse
	getJSON(t, base+"/api/data?date=2025-03-14", &response)

	if len(response.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(response.Entries))
	}
	entry := response.Entries[0]
	if entry.Group != "FIXED" {
		t.Fatalf("Group = %q", entry.Group)
	}
	if entry.Route != "Unknown" || entry.Color != "#333" {
		t.Fatalf("expected unknown route defaults, got %+v", entry)
	}
	if entry.Location != nil {
		t.Fatalf("expected nil location, got %+v", entry.Location)
	}
}

func TestDataEndpointEmptyDay(t *testing.T) {
	_, base, _, _, _ := startServer(t)

	var response dataResponse
	getJSON(t, base+"/api/data?date=2025-01-01", &response)
	if len(response.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(response.Entries))
	}
}

func TestDataEndpointRejectsBadDate(t *testing.T) {
	_, base, _, _, _ := startServer(t)

	resp, err := http.Get(base + "/api/data?date=yesterday")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestRootServesDashboardPage(t *testing.T) {
	_, base, _, _, _ := startServer(t)

	resp, err := http.Get(base + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), "Dispatch Log") {
		t.Fatal("dashboard page missing expected content")
	}
}

func TestStaticFileServing(t *testing.T) {
	_, base, _, baseDir, _ := startServer(t)

	dir := filepath.Join(baseDir, "SDR Recordings", "CYRIDE-CIRC", "2025", "03", "14")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "08_15_30-981.mp3"), []byte("audio-bytes"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	url := fmt.Sprintf("%s/SDR%%20Recordings/CYRIDE-CIRC/2025/03/14/08_15_30-981.mp3", base)
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET recording: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if string(body) != "audio-bytes" {
		t.Fatalf("unexpected body %q", body)
	}
}
