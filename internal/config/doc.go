// Package config loads, normalizes, and validates cleancut configuration
// data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLEANCUT_FFPROBE. The Config type centralizes every knob the CLI needs,
// so detector tuning, cache locations, and run history settings are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
