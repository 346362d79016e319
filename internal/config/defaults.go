package config

const (
	defaultArtefactsDir     = "~/.local/share/foildb/artefacts"
	defaultExportDir        = "~/.local/share/foildb/offline_db"
	defaultLogDir           = "~/.local/share/foildb/logs"
	defaultLocale           = "US.en"
	defaultTitleTool        = "titledb-extract"
	defaultTitleToolTimeout = 900
	defaultSyncMode         = "both"
	defaultBatchSize        = 50
	defaultProgressInterval = 25
	defaultFetchTimeout     = 30
	defaultFetchRetries     = 3
	defaultFetchBackoffMS   = 500
	defaultMaxImageBytes    = 32 << 20
	defaultImageEdge        = 128
	defaultImageQuality     = 85
	defaultManifestName     = "offline_db_manifest.json"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ArtefactsDir: defaultArtefactsDir,
			ExportDir:    defaultExportDir,
			LogDir:       defaultLogDir,
		},
		Titles: Titles{
			Locale:      defaultLocale,
			Tool:        defaultTitleTool,
			ToolTimeout: defaultTitleToolTimeout,
		},
		Sync: Sync{
			Mode:             defaultSyncMode,
			BatchSize:        defaultBatchSize,
			ProgressInterval: defaultProgressInterval,
		},
		Fetch: Fetch{
			Timeout:       defaultFetchTimeout,
			Retries:       defaultFetchRetries,
			BackoffMS:     defaultFetchBackoffMS,
			MaxImageBytes: defaultMaxImageBytes,
		},
		Image: Image{
			Edge:    defaultImageEdge,
			Quality: defaultImageQuality,
		},
		Export: Export{
			ManifestName: defaultManifestName,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
