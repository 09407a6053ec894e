// Package config loads, validates, and defaults the TOML configuration shared
// by every memograph command.
package config
