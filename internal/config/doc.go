// Package config loads and validates metacache configuration.
//
// Configuration lives in a TOML file (default:
// ~/.config/metacache/config.toml, with a project-local metacache.toml as a
// fallback). Load applies defaults, expands ~ in paths, normalizes values,
// and validates the result, so callers always receive a usable config.
package config
