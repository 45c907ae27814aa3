// Package config loads, normalizes, and validates proofkit configuration.
//
// Settings come from a TOML file (by default ~/.config/proofkit/config.toml or
// ./proofkit.toml). Paths are expanded, including the ~ shortcut, and the
// publication defaults can be overlaid with a per-book metadata file in TOML,
// YAML, or JSON.
package config
