package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// envPattern matches ${VAR} and ${VAR:-default}.
var envPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// Load reads configuration from a file with ENV interpolation. If
// configPath is empty, it searches default locations. A missing config
// file (when none was named explicitly) is not an error: the defaults
// apply.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg, _, err := LoadWithPath(configPath, getenv)
	return cfg, err
}

// LoadWithPath reads configuration and returns both the config and the
// resolved path. The path is empty when no config file was found and the
// defaults were used.
func LoadWithPath(configPath string, getenv func(string) string) (*Config, string, error) {
	path, err := resolveConfigPath(configPath, getenv)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Defaults(), "", nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	baseDir := filepath.Dir(absPath)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config: %w", err)
	}

	data = interpolateEnv(data, getenv)

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.BaseDir = baseDir

	// Resolve relative paths against the config file's directory.
	for i := range cfg.Templates.Paths {
		if !filepath.IsAbs(cfg.Templates.Paths[i]) {
			cfg.Templates.Paths[i] = filepath.Join(baseDir, cfg.Templates.Paths[i])
		}
	}
	if cfg.Site != "" && !filepath.IsAbs(cfg.Site) {
		cfg.Site = filepath.Join(baseDir, cfg.Site)
	}
	for i := range cfg.Static {
		if cfg.Static[i].Root != "" && !filepath.IsAbs(cfg.Static[i].Root) {
			cfg.Static[i].Root = filepath.Join(baseDir, cfg.Static[i].Root)
		}
		if cfg.Static[i].File != "" && !filepath.IsAbs(cfg.Static[i].File) {
			cfg.Static[i].File = filepath.Join(baseDir, cfg.Static[i].File)
		}
	}

	return cfg, absPath, nil
}

// Validate performs configuration validation. Call this after applying
// CLI overrides (like --dev and --port).
func Validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Server.Port)
	}
	if len(cfg.Templates.Paths) == 0 {
		return fmt.Errorf("templates.paths must name at least one directory")
	}
	if cfg.Templates.MaxDepth <= 0 {
		return fmt.Errorf("templates.max_depth must be positive")
	}
	if ext := cfg.Templates.Extension; ext == "" || ext[0] != '.' {
		return fmt.Errorf("templates.extension must start with '.', got %q", ext)
	}
	switch cfg.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", cfg.Logging.Format)
	}
	for _, static := range cfg.Static {
		if static.Path == "" {
			return fmt.Errorf("static route missing path")
		}
		if static.Root == "" && static.File == "" {
			return fmt.Errorf("static route %s needs root or file", static.Path)
		}
	}
	return nil
}

// resolveConfigPath finds the config file to use.
// Search order: explicit path > JINPRO_CONFIG env > ./jinpro.yaml.
// Returns "" when nothing is found and nothing was named explicitly.
func resolveConfigPath(explicit string, getenv func(string) string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}
	if envPath := getenv("JINPRO_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("JINPRO_CONFIG file not found: %s", envPath)
		}
		return envPath, nil
	}
	if _, err := os.Stat("jinpro.yaml"); err == nil {
		return "jinpro.yaml", nil
	}
	return "", nil
}

// interpolateEnv replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func interpolateEnv(data []byte, getenv func(string) string) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		parts := envPattern.FindSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		value := getenv(string(parts[1]))
		if value == "" && len(parts) >= 3 && len(parts[2]) > 0 {
			value = string(parts[2])
		}
		return []byte(value)
	})
}
