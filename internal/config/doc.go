// Package config loads, normalizes, and validates mediacat configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI and engines need: catalog location, recognized extensions, batch sizing,
// and the dedupe keeper policy.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical strategy names, and clear validation errors.
package config
