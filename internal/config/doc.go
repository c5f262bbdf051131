// Package config loads, normalizes, and validates SAVO's TOML configuration.
//
// Configuration is resolved in layers: repository defaults, then the config
// file (~/.config/savo/config.toml or ./savo.toml), then environment
// overrides for secrets. Invalid values fail fast at load time; nothing is
// silently clamped.
package config
