// Package media prepares raw radio recordings for transcription via ffmpeg:
// mono downmix, resample, voice band-pass, and loudness normalization into a
// temporary WAV working copy.
package media
