// Package config loads, normalizes, and validates scriptforge configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENROUTER_API_KEY. The Config type centralizes the generation constants
// (batch width, window sizing, continuity bounds) so the pipeline never
// hardcodes them.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
