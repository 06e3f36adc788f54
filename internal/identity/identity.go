package identity

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

// filenamePattern matches the recording naming convention
// <HH><sep><MM><sep><SS>-<unitId>.<ext>, where <sep> is "_" or "-" and the
// unit ID is the transmitting radio's numeric identifier.
var filenamePattern = regexp.MustCompile(`(\d{2})[_-](\d{2})[_-](\d{2})-(\d+)\.[A-Za-z0-9]+$`)

// Metadata is the correlation information encoded in a recording filename.
type Metadata struct {
	UnitID      string
	SecondOfDay int
	Display     string // 12-hour clock, e.g. "08:15:30 AM"
}

// Parse extracts time-of-day and unit ID from a recording path. Recordings
// whose names do not follow the convention return ok=false; they are still
// tracked in state as opaque paths but are excluded from location
// correlation.
func Parse(path string) (Metadata, bool) {
	match := filenamePattern.FindStringSubmatch(filepath.Base(path))
	if match == nil {
		return Metadata{}, false
	}

	hour, _ := strconv.Atoi(match[1])
	minute, _ := strconv.Atoi(match[2])
	second, _ := strconv.Atoi(match[3])
	if hour > 23 || minute > 59 || second > 59 {
		return Metadata{}, false
	}

	return Metadata{
		UnitID:      match[4],
		SecondOfDay: hour*3600 + minute*60 + second,
		Display:     displayTime(hour, minute, second),
	}, true
}

// GroupFromPath returns the configured group label the path was recorded
// under, by path-segment match.
func GroupFromPath(path string, groups []string) string {
	segments := strings.Split(filepath.ToSlash(path), "/")
	for _, segment := range segments {
		for _, group := range groups {
			if segment == group {
				return group
			}
		}
	}
	return ""
}

func displayTime(hour, minute, second int) string {
	suffix := "AM"
	display := hour
	switch {
	case hour == 0:
		display = 12
	case hour == 12:
		suffix = "PM"
	case hour > 12:
		display = hour - 12
		suffix = "PM"
	}
	return fmt.Sprintf("%02d:%02d:%02d %s", display, minute, second, suffix)
}
