package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateScanner(); err != nil {
		return err
	}
	if err := c.validateWorker(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateLocations(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.BaseDir) == "" {
		return errors.New("paths.base_dir must be set")
	}
	if strings.TrimSpace(c.Paths.StatesDir) == "" {
		return errors.New("paths.states_dir must be set")
	}
	if strings.TrimSpace(c.Paths.QueueFile) == "" {
		return errors.New("paths.queue_file must be set")
	}
	return nil
}

func (c *Config) validateScanner() error {
	if len(c.Scanner.Groups) == 0 {
		return errors.New("scanner.groups must list at least one source channel")
	}
	for _, group := range c.Scanner.Groups {
		if strings.TrimSpace(group) == "" {
			return errors.New("scanner.groups must not contain empty entries")
		}
		if strings.ContainsAny(group, "/\\") {
			return fmt.Errorf("scanner.groups entry %q must be a bare directory name", group)
		}
	}
	if len(c.Scanner.Extensions) == 0 {
		return errors.New("scanner.extensions must list at least one file extension")
	}
	if c.Scanner.PollInterval <= 0 {
		return errors.New("scanner.poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateWorker() error {
	if c.Worker.LookbackDays < 0 {
		return errors.New("worker.lookback_days must not be negative")
	}
	if c.Worker.IdleInterval <= 0 {
		return errors.New("worker.idle_interval must be positive")
	}
	if c.Worker.UpdateRetries < 1 {
		return errors.New("worker.update_retries must be at least 1")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return errors.New("audio.sample_rate must be positive")
	}
	if c.Audio.HighPassHz < 0 || c.Audio.LowPassHz < 0 {
		return errors.New("audio filter frequencies must not be negative")
	}
	if c.Audio.HighPassHz > 0 && c.Audio.LowPassHz > 0 && c.Audio.HighPassHz >= c.Audio.LowPassHz {
		return errors.New("audio.high_pass_hz must be below audio.low_pass_hz")
	}
	return nil
}

func (c *Config) validateLocations() error {
	if !c.Locations.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Locations.BaseURL) == "" {
		return errors.New("locations.base_url must be set when locations.enabled is true")
	}
	if strings.TrimSpace(c.Locations.APIKey) == "" {
		return errors.New("locations.api_key must be set when locations.enabled is true")
	}
	if c.Locations.PollInterval <= 0 {
		return errors.New("locations.poll_interval must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
