// Package config holds the runtime configuration for lodprobe: the
// sampling parameters, discovery settings, report options, and the
// optional YAML config file with per-endpoint overrides.
package config
