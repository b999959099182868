// Package config loads, normalizes, and validates dumpcheck configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts),
// and reads TOML files. Obtain settings through this package so downstream
// code receives sanitized paths, canonical log formats, and clear
// validation errors.
package config
