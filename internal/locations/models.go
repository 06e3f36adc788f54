package locations

// Vehicle is one bus position within a snapshot. Field names match the
// on-disk JSON contract consumed by the dashboard.
type Vehicle struct {
	Name             string  `json:"name"`
	Lat              float64 `json:"lat"`
	Lon              float64 `json:"lon"`
	Heading          string  `json:"heading"`
	HeadingDegrees   float64 `json:"headingDegrees"`
	Speed            float64 `json:"speed"`
	PassengerPercent float64 `json:"passengerPercent"`
	RouteName        string  `json:"routeName"`
	RouteColor       string  `json:"routeColor"`
	DriverName       string  `json:"driverName,omitempty"`
	LastUpdated      string  `json:"lastUpdated"`
}

// Snapshot is the payload of one dated position file.
type Snapshot struct {
	Vehicles []Vehicle `json:"Vehicles"`
}

var cardinalDirections = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// cardinal converts a heading in degrees to a compass label.
func cardinal(degrees float64) string {
	if degrees < 0 {
		return "N/A"
	}
	idx := int((degrees/45.0)+0.5) % 8
	return cardinalDirections[idx]
}
