package locations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// lookupWindow is how far, in seconds, a snapshot may be from a recording's
// timestamp and still count as its position.
const lookupWindow = 10

// Reader resolves vehicle positions from the dated snapshot files the
// poller writes.
type Reader struct {
	dir string
}

// NewReader constructs a reader over the given location directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// FindVehicle returns the position of unitID closest to secondOfDay on the
// given day, searching snapshots within the lookup window. The boolean is
// false when no nearby snapshot contains the vehicle.
func (r *Reader) FindVehicle(day time.Time, secondOfDay int, unitID string) (Vehicle, bool) {
	dayDir := filepath.Join(
		r.dir,
		day.Format("2006"),
		day.Format("01"),
		day.Format("02"),
	)
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		return Vehicle{}, false
	}

	best := Vehicle{}
	bestDelta := lookupWindow + 1
	found := false
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		second, ok := snapshotSecond(entry.Name())
		if !ok {
			continue
		}
		delta := second - secondOfDay
		if delta < 0 {
			delta = -delta
		}
		if delta > lookupWindow || delta >= bestDelta {
			continue
		}

		snapshot, err := r.load(filepath.Join(dayDir, entry.Name()))
		if err != nil {
			continue
		}
		for _, v := range snapshot.Vehicles {
			if v.Name == unitID {
				best = v
				bestDelta = delta
				found = true
				break
			}
		}
	}
	return best, found
}

func (r *Reader) load(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return snapshot, nil
}

// snapshotSecond converts an HH-MM-SS.json file name to seconds since
// midnight.
func snapshotSecond(name string) (int, bool) {
	var hour, minute, second int
	if _, err := fmt.Sscanf(name, "%d-%d-%d.json", &hour, &minute, &second); err != nil {
		return 0, false
	}
	if hour > 23 || minute > 59 || second > 59 {
		return 0, false
	}
	return hour*3600 + minute*60 + second, true
}
