// Package config loads, normalizes, and validates foildb configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours FOILDB_* environment overrides so
// the sync surface can be driven without editing the file. The Config type
// centralizes every knob the CLI needs, allowing artefact/export directories
// and stage behaviour to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
