// Package config defines the jinpro server configuration, loaded from a
// YAML file with environment-variable interpolation.
package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML accepts "5m"-style strings or
// plain integer seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"5m\" or integer seconds")
	}
	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}
	seconds, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(time.Duration(seconds) * time.Second)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config represents the complete jinpro configuration.
type Config struct {
	BaseDir     string            `yaml:"-"` // Directory containing the config file, for resolving relative paths
	Server      ServerConfig      `yaml:"server"`
	Templates   TemplatesConfig   `yaml:"templates"`
	Compression CompressionConfig `yaml:"compression"`
	Logging     LoggingConfig     `yaml:"logging"`
	Site        string            `yaml:"site"`       // Directory of page templates served by URL path
	SiteCache   Duration          `yaml:"site_cache"` // Response cache TTL for rendered pages (0 = no cache)
	Static      []StaticRoute     `yaml:"static"`
	Meta        map[string]any    `yaml:"meta"` // Custom values exposed to templates as meta.*
}

// ServerConfig holds server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	Dev  bool   `yaml:"-"` // Set via CLI flag, not config
}

// TemplatesConfig holds the component engine settings.
type TemplatesConfig struct {
	Paths        []string `yaml:"paths"`         // Template search directories, in lookup order
	Extension    string   `yaml:"extension"`     // Component file extension (default: ".jinja")
	MaxDepth     int      `yaml:"max_depth"`     // Component nesting limit (default: 64)
	Autoescape   bool     `yaml:"autoescape"`    // HTML-escape {{ }} output (default: false)
	EvalUnquoted bool     `yaml:"eval_unquoted"` // Treat unquoted call attribute values as expressions
	Cache        bool     `yaml:"cache"`         // Cache loaded template source (always off in dev mode)
}

// CompressionConfig holds HTTP response compression settings.
type CompressionConfig struct {
	Enabled bool   `yaml:"enabled"`  // Enable gzip compression (default: true)
	Level   string `yaml:"level"`    // "fastest", "default", "best", "none" (default: "default")
	MinSize int    `yaml:"min_size"` // Minimum response size to compress in bytes (default: 1024)
}

// LoggingConfig holds request logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "info" or "error"
	Format string `yaml:"format"` // "text" or "json"
}

// StaticRoute maps a URL prefix to a directory or a single file.
type StaticRoute struct {
	Path string `yaml:"path"`
	Root string `yaml:"root"`
	File string `yaml:"file"`
}

// Defaults returns a Config with default values applied.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "",
			Port: 8080,
		},
		Templates: TemplatesConfig{
			Paths:     []string{"./templates"},
			Extension: ".jinja",
			MaxDepth:  64,
			Cache:     true,
		},
		Compression: CompressionConfig{
			Enabled: true,
			Level:   "default",
			MinSize: 1024,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
