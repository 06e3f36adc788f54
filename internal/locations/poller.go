package locations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"cymap/internal/config"
	"cymap/internal/fileutil"
	"cymap/internal/logging"
)

const userAgent = "cymap/0.1.0"

// Poller periodically fetches vehicle positions from the transit API and
// writes them to dated snapshot files the dashboard correlates against.
type Poller struct {
	cfg    config.Locations
	dir    string
	client *http.Client
	logger *slog.Logger
}

// NewPoller constructs a poller writing snapshots under cfg's location dir.
func NewPoller(cfg *config.Config, logger *slog.Logger) *Poller {
	timeout := time.Duration(cfg.Locations.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Poller{
		cfg:    cfg.Locations,
		dir:    cfg.Paths.LocationDir,
		client: &http.Client{Timeout: timeout},
		logger: logging.NewComponentLogger(logger, "locations"),
	}
}

// Run polls at the configured interval until the context is cancelled.
// Per-cycle failures are logged and never fatal; the next tick retries.
func (p *Poller) Run(ctx context.Context) error {
	interval := time.Duration(p.cfg.PollInterval) * time.Second
	p.logger.Info("location polling started", logging.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.snapshot(ctx); err != nil {
			p.logger.Warn("snapshot cycle failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// snapshot fetches, merges, filters, and persists one position file.
func (p *Poller) snapshot(ctx context.Context) error {
	vehicles, err := p.fetchVehicles(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	path := filepath.Join(
		p.dir,
		now.Format("2006"),
		now.Format("01"),
		now.Format("02"),
		now.Format("15-04-05")+".json",
	)

	data, err := json.MarshalIndent(Snapshot{Vehicles: vehicles}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return err
	}

	p.logger.Debug("snapshot saved",
		logging.Int("vehicles", len(vehicles)),
		logging.String(logging.FieldPath, path),
	)
	return nil
}

// apiVehicle mirrors the transit portal's vehicle payload.
type apiVehicle struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Lat            *float64 `json:"lat"`
	Lon            *float64 `json:"lon"`
	HeadingDegrees *float64 `json:"headingDegrees"`
	Speed          float64  `json:"speed"`
	PassengerLoad  float64  `json:"passengerLoad"`
	DriverID       int64    `json:"driverId"`
	LastUpdated    string   `json:"lastUpdated"`
}

type apiDriver struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (p *Poller) fetchVehicles(ctx context.Context) ([]Vehicle, error) {
	var all []apiVehicle
	if err := p.getJSON(ctx, "/vehicles", &all); err != nil {
		return nil, fmt.Errorf("fetch vehicles: %w", err)
	}

	var drivers []apiDriver
	if err := p.getJSON(ctx, "/drivers", &drivers); err != nil {
		p.logger.Debug("driver list unavailable", logging.Error(err))
	}
	driverNames := make(map[int64]string, len(drivers))
	for _, d := range drivers {
		driverNames[d.ID] = strings.TrimSpace(d.FirstName + " " + d.LastName)
	}

	// Route assignment comes from per-route vehicle lists; vehicles absent
	// from every route are out of service.
	type routeInfo struct {
		name  string
		color string
	}
	assignments := make(map[int64]routeInfo)
	for _, route := range p.cfg.Routes {
		var onRoute []apiVehicle
		endpoint := fmt.Sprintf("/routes/%d/vehicles", route.ID)
		if err := p.getJSON(ctx, endpoint, &onRoute); err != nil {
			p.logger.Debug("route fetch failed",
				logging.Int64("route_id", route.ID),
				logging.Error(err),
			)
			continue
		}
		for _, v := range onRoute {
			assignments[v.ID] = routeInfo{name: route.Name, color: route.Color}
		}
	}

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	vehicles := make([]Vehicle, 0, len(all))
	for _, v := range all {
		if v.Lat == nil || v.Lon == nil || v.LastUpdated == "" {
			continue
		}
		updated, err := time.Parse(time.RFC3339, v.LastUpdated)
		if err != nil || updated.Before(cutoff) {
			continue
		}

		routeName := "Out Of Service"
		routeColor := "#808080"
		if info, ok := assignments[v.ID]; ok {
			routeName = info.name
			routeColor = info.color
		}

		heading := -1.0
		if v.HeadingDegrees != nil {
			heading = *v.HeadingDegrees
		}

		vehicles = append(vehicles, Vehicle{
			Name:             v.Name,
			Lat:              *v.Lat,
			Lon:              *v.Lon,
			Heading:          cardinal(heading),
			HeadingDegrees:   maxFloat(heading, 0),
			Speed:            v.Speed,
			PassengerPercent: v.PassengerLoad,
			RouteName:        routeName,
			RouteColor:       routeColor,
			DriverName:       driverNames[v.DriverID],
			LastUpdated:      v.LastUpdated,
		})
	}
	return vehicles, nil
}

func (p *Poller) getJSON(ctx context.Context, endpoint string, out any) error {
	target := strings.TrimRight(p.cfg.BaseURL, "/") + endpoint
	target += "?api-key=" + url.QueryEscape(p.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func maxFloat(value, floor float64) float64 {
	if value < floor {
		return floor
	}
	return value
}
