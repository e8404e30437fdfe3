// Package config loads and validates huella's TOML configuration.
//
// Configuration resolves from an explicit --config path, then
// ~/.config/huella/config.toml, then ./huella.toml, falling back to compiled
// defaults when no file exists. Paths are tilde-expanded and made absolute
// during normalization.
package config
