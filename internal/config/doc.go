// Package config loads, normalizes, and validates cymap configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and derives the shared directory layout from
// a single base directory. The Config type centralizes every knob the
// scanner, worker, poller, and dashboard need; components receive it by
// reference at construction and never read ambient state themselves.
package config
