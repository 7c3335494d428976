// Package config loads and validates the toolkit configuration from a YAML
// file. Validation uses struct tags via go-playground/validator; defaults are
// applied after a successful load so a minimal config only needs the routing
// engine base URL.
package config
