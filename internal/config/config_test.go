package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"foildb/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantArtefacts := filepath.Join(tempHome, ".local", "share", "foildb", "artefacts")
	if cfg.Paths.ArtefactsDir != wantArtefacts {
		t.Fatalf("unexpected artefacts dir: got %q want %q", cfg.Paths.ArtefactsDir, wantArtefacts)
	}
	if cfg.Paths.ExportDir != filepath.Join(tempHome, ".local", "share", "foildb", "offline_db") {
		t.Fatalf("unexpected export dir: %q", cfg.Paths.ExportDir)
	}
	if cfg.Titles.Locale != "US.en" {
		t.Fatalf("unexpected locale: %q", cfg.Titles.Locale)
	}
	if cfg.Sync.Mode != "both" {
		t.Fatalf("unexpected sync mode: %q", cfg.Sync.Mode)
	}
	if cfg.Sync.BatchSize != 50 || cfg.Sync.ProgressInterval != 25 {
		t.Fatalf("unexpected sync batching: %d/%d", cfg.Sync.BatchSize, cfg.Sync.ProgressInterval)
	}
	if cfg.Export.Enabled {
		t.Fatal("expected export disabled by default")
	}
	if cfg.Export.ManifestName != "offline_db_manifest.json" {
		t.Fatalf("unexpected manifest name: %q", cfg.Export.ManifestName)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	for _, dir := range []string{cfg.Paths.ArtefactsDir, cfg.Paths.ExportDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}

	want := filepath.Join(cfg.Paths.ArtefactsDir, "titles.US.en.json")
	if got := cfg.TitlesJSONPath(); got != want {
		t.Fatalf("unexpected titles path: got %q want %q", got, want)
	}
	wantFeed := filepath.Join(cfg.Paths.ArtefactsDir, "titledb", "US.en.json")
	if got := cfg.RawFeedPath(); got != wantFeed {
		t.Fatalf("unexpected feed path: got %q want %q", got, wantFeed)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "foildb.toml")

	type payload struct {
		Titles struct {
			Locale string `toml:"locale"`
		} `toml:"titles"`
		Sync struct {
			Mode      string `toml:"mode"`
			BatchSize int    `toml:"batch_size"`
		} `toml:"sync"`
		Export struct {
			BaseURL string `toml:"base_url"`
		} `toml:"export"`
	}
	custom := payload{}
	custom.Titles.Locale = "JP.ja"
	custom.Sync.Mode = "icons"
	custom.Sync.BatchSize = 10
	custom.Export.BaseURL = "https://cdn.example.com/offline"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Titles.Locale != "JP.ja" {
		t.Fatalf("expected locale from file, got %q", cfg.Titles.Locale)
	}
	if cfg.Sync.Mode != "icons" {
		t.Fatalf("expected mode icons, got %q", cfg.Sync.Mode)
	}
	if cfg.Sync.BatchSize != 10 {
		t.Fatalf("expected batch size 10, got %d", cfg.Sync.BatchSize)
	}
	if cfg.Export.BaseURL != "https://cdn.example.com/offline" {
		t.Fatalf("unexpected base url: %q", cfg.Export.BaseURL)
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "foildb.toml")

	type payload struct {
		Sync struct {
			Mode string `toml:"mode"`
		} `toml:"sync"`
		Export struct {
			Enabled      bool   `toml:"enabled"`
			ManifestName string `toml:"manifest_name"`
		} `toml:"export"`
	}
	custom := payload{}
	custom.Sync.Mode = "banners"
	custom.Export.ManifestName = "file.json"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	t.Setenv("FOILDB_MODE", "icons")
	t.Setenv("FOILDB_RESET", "1")
	t.Setenv("FOILDB_CHECK_ONLY", "true")
	t.Setenv("FOILDB_EXPORT", "yes")
	t.Setenv("FOILDB_REFRESH_TITLES", "on")
	t.Setenv("FOILDB_MANIFEST_NAME", "env.json")
	t.Setenv("FOILDB_MANIFEST_BASE_URL", "https://env.example.com")
	t.Setenv("FOILDB_DB_VERSION", "20260501000000")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Sync.Mode != "icons" {
		t.Errorf("expected mode from env, got %q", cfg.Sync.Mode)
	}
	if !cfg.Sync.Reset {
		t.Error("expected reset from env")
	}
	if !cfg.Sync.CheckOnly {
		t.Error("expected check_only from env")
	}
	if !cfg.Export.Enabled {
		t.Error("expected export enabled from env")
	}
	if !cfg.Titles.Refresh {
		t.Error("expected titles refresh from env")
	}
	if cfg.Export.ManifestName != "env.json" {
		t.Errorf("expected manifest name from env, got %q", cfg.Export.ManifestName)
	}
	if cfg.Export.BaseURL != "https://env.example.com" {
		t.Errorf("expected base url from env, got %q", cfg.Export.BaseURL)
	}
	if cfg.Export.DBVersion != "20260501000000" {
		t.Errorf("expected db version from env, got %q", cfg.Export.DBVersion)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "offline_db_manifest.json") {
		t.Fatalf("sample config missing manifest default: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Titles.Locale != "US.en" {
		t.Fatalf("expected sample locale US.en, got %q", cfg.Titles.Locale)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	load := func(t *testing.T, mutate func(cfg *config.Config)) error {
		t.Helper()
		cfg := config.Default()
		cfg.Paths.ArtefactsDir = t.TempDir()
		cfg.Paths.ExportDir = t.TempDir()
		cfg.Paths.LogDir = t.TempDir()
		mutate(&cfg)
		return cfg.Validate()
	}

	if err := load(t, func(cfg *config.Config) { cfg.Sync.Mode = "all" }); err == nil {
		t.Fatal("expected error for invalid sync mode")
	}
	if err := load(t, func(cfg *config.Config) { cfg.Titles.Locale = "useng" }); err == nil {
		t.Fatal("expected error for malformed locale")
	}
	if err := load(t, func(cfg *config.Config) { cfg.Titles.Locale = "ZZZZ.en" }); err == nil {
		t.Fatal("expected error for bad region")
	}
	if err := load(t, func(cfg *config.Config) { cfg.Sync.BatchSize = 0 }); err == nil {
		t.Fatal("expected error for non-positive batch size")
	}
	if err := load(t, func(cfg *config.Config) { cfg.Image.Quality = 140 }); err == nil {
		t.Fatal("expected error for out-of-range quality")
	}
	if err := load(t, func(cfg *config.Config) { cfg.Export.ManifestName = "" }); err == nil {
		t.Fatal("expected error for empty manifest name")
	}
}

func TestSplitLocale(t *testing.T) {
	region, lang, err := config.SplitLocale("US.en")
	if err != nil {
		t.Fatalf("SplitLocale returned error: %v", err)
	}
	if region != "US" || lang != "en" {
		t.Fatalf("unexpected parts: %q %q", region, lang)
	}
	if _, _, err := config.SplitLocale("en"); err == nil {
		t.Fatal("expected error for missing region")
	}
}
