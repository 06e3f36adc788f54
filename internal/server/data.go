package server

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"time"

	"cymap/internal/identity"
	"cymap/internal/logging"
)

// dataResponse is the payload the dashboard page renders. Field names are
// the on-wire contract and must stay stable.
type dataResponse struct {
	Status  dataStatus  `json:"status"`
	Entries []dataEntry `json:"entries"`
}

type dataStatus struct {
	Mounted bool `json:"mounted"`
}

type dataEntry struct {
	Time      string        `json:"Time"`
	Group     string        `json:"Group"`
	BusID     string        `json:"BusID"`
	Text      string        `json:"Text"`
	AudioPath string        `json:"AudioPath"`
	Route     string        `json:"Route"`
	Color     string        `json:"Color"`
	Location  *dataLocation `json:"Location"`
}

type dataLocation struct {
	Lat     float64 `json:"Lat"`
	Long    float64 `json:"Long"`
	Heading float64 `json:"Heading"`
	Speed   float64 `json:"Speed"`
}

// handleData returns the day's transcript entries enriched with parsed
// filename metadata and, where a nearby snapshot exists, vehicle position.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := dataResponse{
		Status:  dataStatus{Mounted: dirExists(s.cfg.Paths.BaseDir)},
		Entries: []dataEntry{},
	}

	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		day, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
		if err != nil {
			http.Error(w, "invalid date", http.StatusBadRequest)
			return
		}
		response.Entries = s.buildEntries(day)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		s.logger.Error("encode data response failed", logging.Error(err))
	}
}

func (s *Server) buildEntries(day time.Time) []dataEntry {
	records := s.transcripts.Load(day)
	entries := make([]dataEntry, 0, len(records))

	for _, record := range records {
		entry := dataEntry{
			Time:      "00:00:00",
			Group:     "Unknown",
			BusID:     "Unknown",
			Text:      record.Text,
			AudioPath: relativeAudioPath(record.Path, s.cfg.Paths.BaseDir),
			Route:     "Unknown",
			Color:     "#333",
		}
		if group := identity.GroupFromPath(record.Path, s.cfg.Scanner.Groups); group != "" {
			entry.Group = shortGroup(group)
		}

		meta, ok := identity.Parse(record.Path)
		if ok {
			entry.Time = meta.Display
			entry.BusID = meta.UnitID

			if vehicle, found := s.reader.FindVehicle(day, meta.SecondOfDay, meta.UnitID); found {
				entry.Route = vehicle.RouteName
				entry.Color = vehicle.RouteColor
				entry.Location = &dataLocation{
					Lat:     vehicle.Lat,
					Long:    vehicle.Lon,
					Heading: vehicle.HeadingDegrees,
					Speed:   vehicle.Speed,
				}
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// relativeAudioPath strips the base directory so the browser can fetch the
// recording through the static file handler.
func relativeAudioPath(path, baseDir string) string {
	trimmed := strings.TrimPrefix(path, strings.TrimRight(baseDir, "/"))
	if trimmed == path {
		return path
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return trimmed
}

// shortGroup drops the agency prefix from a group label so the dashboard
// shows "CIRC" instead of "CYRIDE-CIRC".
func shortGroup(group string) string {
	if idx := strings.LastIndex(group, "-"); idx >= 0 && idx < len(group)-1 {
		return group[idx+1:]
	}
	return group
}
