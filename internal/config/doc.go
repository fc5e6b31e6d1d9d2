// Package config loads gesturevol configuration from TOML, applies
// environment overrides and validates the result.
package config
