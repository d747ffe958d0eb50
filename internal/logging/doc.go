// Package logging centralizes slog logger construction and the structured
// field vocabulary used across cleancut.
//
// Loggers are built from Options (level and format), render either compact
// console lines or JSON, and are tagged per component via
// NewComponentLogger so every record carries a "component" attribute.
package logging
