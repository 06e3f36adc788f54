// Command cymap is the CLI for the transit radio transcription pipeline.
// It can run the full daemon or individual services, inspect per-day
// processing status, and manage the configuration file.
package main
