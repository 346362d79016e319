package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ArtefactsDir string `toml:"artefacts_dir"`
	ExportDir    string `toml:"export_dir"`
	LogDir       string `toml:"log_dir"`
}

// Titles contains configuration for the metadata snapshot stage.
type Titles struct {
	Locale      string `toml:"locale"`
	Tool        string `toml:"tool"`
	ToolTimeout int    `toml:"tool_timeout"`
	Refresh     bool   `toml:"refresh"`
}

// Sync contains configuration for the media synchronization stage.
type Sync struct {
	Mode             string `toml:"mode"`
	BatchSize        int    `toml:"batch_size"`
	ProgressInterval int    `toml:"progress_interval"`
	Reset            bool   `toml:"reset"`
	CheckOnly        bool   `toml:"check_only"`
}

// Fetch contains configuration for image downloads.
type Fetch struct {
	Timeout       int   `toml:"timeout"`
	Retries       int   `toml:"retries"`
	BackoffMS     int   `toml:"backoff_ms"`
	MaxImageBytes int64 `toml:"max_image_bytes"`
}

// Image contains configuration for the normalized output images.
type Image struct {
	Edge    int `toml:"edge"`
	Quality int `toml:"quality"`
}

// Export contains configuration for pack and manifest generation.
type Export struct {
	Enabled      bool   `toml:"enabled"`
	ManifestName string `toml:"manifest_name"`
	BaseURL      string `toml:"base_url"`
	DBVersion    string `toml:"db_version"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for foildb.
//
// Configuration sections by subsystem:
//   - Paths: artefact, export, and log directories
//   - Titles: upstream locale, extraction tool, refresh behaviour
//   - Sync: media kinds, batching, progress cadence, reset/check-only flags
//   - Fetch: download timeout and retry budget
//   - Image: normalized output geometry and encode quality
//   - Export: pack/manifest generation settings
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	Titles  Titles  `toml:"titles"`
	Sync    Sync    `toml:"sync"`
	Fetch   Fetch   `toml:"fetch"`
	Image   Image   `toml:"image"`
	Export  Export  `toml:"export"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/foildb/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if env, ok := os.LookupEnv("FOILDB_CONFIG"); ok && strings.TrimSpace(env) != "" {
			path = strings.TrimSpace(env)
		}
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/foildb/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("foildb.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ArtefactsDir, c.Paths.ExportDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// TitlesJSONPath returns the generated metadata snapshot location for the
// configured locale.
func (c *Config) TitlesJSONPath() string {
	return filepath.Join(c.Paths.ArtefactsDir, "titles."+c.Titles.Locale+".json")
}

// RawFeedPath returns the upstream feed document location for the configured
// locale. The extraction tool reads this file; its absence is a structural
// failure for the titles stage.
func (c *Config) RawFeedPath() string {
	return filepath.Join(c.Paths.ArtefactsDir, "titledb", c.Titles.Locale+".json")
}

// SourceHashPath returns the sidecar recording the source-document hash from
// the last snapshot regeneration.
func (c *Config) SourceHashPath() string {
	return filepath.Join(c.Paths.ArtefactsDir, "titles."+c.Titles.Locale+".src.sha256")
}

// ManifestPath returns the manifest location inside the export directory.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.ExportDir, c.Export.ManifestName)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SplitLocale breaks a locale value like "US.en" into its region and language
// parts.
func SplitLocale(locale string) (region, lang string, err error) {
	parts := strings.SplitN(strings.TrimSpace(locale), ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("locale %q must have the form REGION.lang", locale)
	}
	return parts[0], parts[1], nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
