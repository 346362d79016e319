package config

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// SyncModes lists the accepted values for sync.mode.
var SyncModes = []string{"icons", "banners", "both"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateTitles(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateImage(); err != nil {
		return err
	}
	if err := c.validateExport(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateTitles() error {
	region, lang, err := SplitLocale(c.Titles.Locale)
	if err != nil {
		return fmt.Errorf("titles.locale: %w", err)
	}
	if _, err := language.ParseRegion(region); err != nil {
		return fmt.Errorf("titles.locale: region %q: %w", region, err)
	}
	if _, err := language.ParseBase(lang); err != nil {
		return fmt.Errorf("titles.locale: language %q: %w", lang, err)
	}
	if c.Titles.Tool == "" {
		return errors.New("titles.tool must be set")
	}
	if c.Titles.ToolTimeout <= 0 {
		return errors.New("titles.tool_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateSync() error {
	valid := false
	for _, mode := range SyncModes {
		if c.Sync.Mode == mode {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("sync.mode must be one of icons, banners, both; got %q", c.Sync.Mode)
	}
	if err := ensurePositiveMap(map[string]int{
		"sync.batch_size":        c.Sync.BatchSize,
		"sync.progress_interval": c.Sync.ProgressInterval,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFetch() error {
	if err := ensurePositiveMap(map[string]int{
		"fetch.timeout":    c.Fetch.Timeout,
		"fetch.backoff_ms": c.Fetch.BackoffMS,
	}); err != nil {
		return err
	}
	if c.Fetch.Retries < 0 {
		return errors.New("fetch.retries must be >= 0")
	}
	if c.Fetch.MaxImageBytes <= 0 {
		return errors.New("fetch.max_image_bytes must be positive")
	}
	return nil
}

func (c *Config) validateImage() error {
	if c.Image.Edge <= 0 {
		return errors.New("image.edge must be positive")
	}
	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return errors.New("image.quality must be between 1 and 100")
	}
	return nil
}

func (c *Config) validateExport() error {
	if c.Export.ManifestName == "" {
		return errors.New("export.manifest_name must be set")
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
