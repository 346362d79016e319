package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTitles()
	c.normalizeSync()
	c.normalizeFetch()
	c.normalizeImage()
	c.normalizeExport()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ArtefactsDir) == "" {
		c.Paths.ArtefactsDir = defaultArtefactsDir
	}
	if c.Paths.ArtefactsDir, err = expandPath(c.Paths.ArtefactsDir); err != nil {
		return fmt.Errorf("paths.artefacts_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}
	if c.Paths.ExportDir, err = expandPath(c.Paths.ExportDir); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTitles() {
	c.Titles.Locale = strings.TrimSpace(c.Titles.Locale)
	if c.Titles.Locale == "" {
		c.Titles.Locale = defaultLocale
	}
	c.Titles.Tool = strings.TrimSpace(c.Titles.Tool)
	if c.Titles.Tool == "" {
		c.Titles.Tool = defaultTitleTool
	}
	if c.Titles.ToolTimeout <= 0 {
		c.Titles.ToolTimeout = defaultTitleToolTimeout
	}
	if value, ok := lookupBoolEnv("FOILDB_REFRESH_TITLES"); ok {
		c.Titles.Refresh = value
	}
}

func (c *Config) normalizeSync() {
	c.Sync.Mode = strings.ToLower(strings.TrimSpace(c.Sync.Mode))
	if c.Sync.Mode == "" {
		c.Sync.Mode = defaultSyncMode
	}
	if value, ok := os.LookupEnv("FOILDB_MODE"); ok && strings.TrimSpace(value) != "" {
		c.Sync.Mode = strings.ToLower(strings.TrimSpace(value))
	}
	if c.Sync.BatchSize <= 0 {
		c.Sync.BatchSize = defaultBatchSize
	}
	if c.Sync.ProgressInterval <= 0 {
		c.Sync.ProgressInterval = defaultProgressInterval
	}
	if value, ok := lookupBoolEnv("FOILDB_RESET"); ok {
		c.Sync.Reset = value
	}
	if value, ok := lookupBoolEnv("FOILDB_CHECK_ONLY"); ok {
		c.Sync.CheckOnly = value
	}
}

func (c *Config) normalizeFetch() {
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = defaultFetchTimeout
	}
	if c.Fetch.Retries < 0 {
		c.Fetch.Retries = defaultFetchRetries
	}
	if c.Fetch.BackoffMS <= 0 {
		c.Fetch.BackoffMS = defaultFetchBackoffMS
	}
	if c.Fetch.MaxImageBytes <= 0 {
		c.Fetch.MaxImageBytes = defaultMaxImageBytes
	}
}

func (c *Config) normalizeImage() {
	if c.Image.Edge <= 0 {
		c.Image.Edge = defaultImageEdge
	}
	if c.Image.Quality <= 0 || c.Image.Quality > 100 {
		c.Image.Quality = defaultImageQuality
	}
}

func (c *Config) normalizeExport() {
	if value, ok := lookupBoolEnv("FOILDB_EXPORT"); ok {
		c.Export.Enabled = value
	}
	c.Export.ManifestName = strings.TrimSpace(c.Export.ManifestName)
	if c.Export.ManifestName == "" {
		c.Export.ManifestName = defaultManifestName
	}
	if value, ok := os.LookupEnv("FOILDB_MANIFEST_NAME"); ok && strings.TrimSpace(value) != "" {
		c.Export.ManifestName = strings.TrimSpace(value)
	}
	c.Export.BaseURL = strings.TrimSpace(c.Export.BaseURL)
	if value, ok := os.LookupEnv("FOILDB_MANIFEST_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		c.Export.BaseURL = strings.TrimSpace(value)
	}
	c.Export.DBVersion = strings.TrimSpace(c.Export.DBVersion)
	if value, ok := os.LookupEnv("FOILDB_DB_VERSION"); ok && strings.TrimSpace(value) != "" {
		c.Export.DBVersion = strings.TrimSpace(value)
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func lookupBoolEnv(name string) (bool, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return false, false
	}
	switch value {
	case "yes", "y", "on":
		return true, true
	case "no", "n", "off":
		return false, true
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, false
	}
	return parsed, true
}
