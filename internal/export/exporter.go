package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"foildb/internal/config"
	"foildb/internal/fileutil"
	"foildb/internal/imagestore"
	"foildb/internal/logging"
	"foildb/internal/pack"
	"foildb/internal/services"
	"foildb/internal/titles"
)

// Pack file names inside the output directory.
const (
	TitlesPackName = "titles.pack"
	IconsPackName  = "icons.pack"
)

// Request describes one export invocation. Empty fields fall back to the
// configured defaults.
type Request struct {
	IconDB       string
	TitlesJSON   string
	SourceDir    string
	OutputDir    string
	SkipIcons    bool
	SkipMetadata bool
	BaseURL      string
	ManifestName string
	DBVersion    string
}

// PackResult describes one produced pack.
type PackResult struct {
	Name      string
	Path      string
	Count     int
	SizeBytes int64
}

// Result reports what an invocation produced. Skips records inputs that
// discovery could not find; a skipped pack is an expected condition, not a
// failure. ManifestPath is empty unless both packs were produced.
type Result struct {
	TitlesPack   *PackResult
	IconsPack    *PackResult
	ManifestPath string
	Skips        []string
}

// Exporter turns row stores and title snapshots into distribution packs.
type Exporter struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New builds an exporter over the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Exporter {
	return &Exporter{cfg: cfg, logger: logging.NewComponentLogger(logger, "export")}
}

// Run resolves inputs, writes whichever packs have inputs, and writes the
// manifest when this invocation produced both packs. An explicitly flagged
// input that does not exist is fatal; a discovery miss is recorded as a
// skip. Finding no input at all is fatal.
func (e *Exporter) Run(ctx context.Context, req Request) (Result, error) {
	result := Result{}
	ctx = services.WithStage(ctx, "export")

	needIcons := !req.SkipIcons
	needMetadata := !req.SkipMetadata
	if !needIcons && !needMetadata {
		e.logger.InfoContext(ctx, "nothing to export, both packs skipped")
		return result, nil
	}

	outputDir := firstNonEmpty(req.OutputDir, e.cfg.Paths.ExportDir)
	manifestName := firstNonEmpty(req.ManifestName, e.cfg.Export.ManifestName, DefaultManifestName)
	baseURL := firstNonEmpty(req.BaseURL, e.cfg.Export.BaseURL)
	dbVersion := firstNonEmpty(req.DBVersion, e.cfg.Export.DBVersion)

	titlesInput, iconInput, err := e.resolveInputs(ctx, req, needMetadata, needIcons, &result)
	if err != nil {
		return result, err
	}
	if titlesInput == "" && iconInput == "" {
		return result, services.Wrap(services.ErrSource, "export", "resolve",
			fmt.Sprintf("no inputs found under %s", req.SourceDir), nil)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrSource, "export", "prepare", outputDir, err)
	}

	if titlesInput != "" {
		packPath := filepath.Join(outputDir, TitlesPackName)
		count, err := e.exportTitles(titlesInput, packPath)
		if err != nil {
			return result, err
		}
		result.TitlesPack = &PackResult{
			Name:      TitlesPackName,
			Path:      packPath,
			Count:     count,
			SizeBytes: fileutil.FileSize(packPath),
		}
		e.logger.InfoContext(ctx, "metadata pack written",
			logging.String("source", titlesInput),
			logging.Int("entries", count),
			logging.String("path", packPath))
	}

	if iconInput != "" {
		packPath := filepath.Join(outputDir, IconsPackName)
		count, err := e.exportIcons(ctx, iconInput, packPath)
		if err != nil {
			return result, err
		}
		result.IconsPack = &PackResult{
			Name:      IconsPackName,
			Path:      packPath,
			Count:     count,
			SizeBytes: fileutil.FileSize(packPath),
		}
		e.logger.InfoContext(ctx, "icon pack written",
			logging.String("source", iconInput),
			logging.Int("entries", count),
			logging.String("path", packPath))
	}

	if result.TitlesPack != nil && result.IconsPack != nil {
		manifest, err := buildManifest(map[string]string{
			result.TitlesPack.Name: result.TitlesPack.Path,
			result.IconsPack.Name:  result.IconsPack.Path,
		}, baseURL, dbVersion, time.Now())
		if err != nil {
			return result, services.Wrap(services.ErrSource, "export", "manifest", "", err)
		}
		manifestPath := filepath.Join(outputDir, manifestName)
		if err := WriteManifest(manifestPath, manifest); err != nil {
			return result, services.Wrap(services.ErrSource, "export", "manifest", "", err)
		}
		result.ManifestPath = manifestPath
		e.logger.InfoContext(ctx, "manifest written",
			logging.String("path", manifestPath),
			logging.String("db_version", manifest.DBVersion))
	} else {
		e.logger.InfoContext(ctx, "manifest skipped, requires both packs this invocation")
	}

	return result, nil
}

func (e *Exporter) resolveInputs(ctx context.Context, req Request, needMetadata, needIcons bool, result *Result) (titlesInput, iconInput string, err error) {
	sourceDir := strings.TrimSpace(req.SourceDir)
	if sourceDir != "" {
		info, statErr := os.Stat(sourceDir)
		if statErr != nil || !info.IsDir() {
			return "", "", services.Wrap(services.ErrSource, "export", "resolve",
				fmt.Sprintf("source directory %s not found", sourceDir), statErr)
		}
	}

	if needMetadata {
		path, skip, rerr := resolveOne(req.TitlesJSON, sourceDir,
			TitlesCandidates(e.cfg.Titles.Locale), "titles json", "--titles-json")
		if rerr != nil {
			return "", "", rerr
		}
		if skip != "" {
			result.Skips = append(result.Skips, skip)
			e.logger.WarnContext(ctx, "metadata pack skipped", logging.String("reason", skip))
		}
		titlesInput = path
	}

	if needIcons {
		path, skip, rerr := resolveOne(req.IconDB, sourceDir,
			IconDBCandidates, "icon store", "--icon-db")
		if rerr != nil {
			return "", "", rerr
		}
		if skip != "" {
			result.Skips = append(result.Skips, skip)
			e.logger.WarnContext(ctx, "icon pack skipped", logging.String("reason", skip))
		}
		iconInput = path
	}

	return titlesInput, iconInput, nil
}

// resolveOne yields exactly one of: an input path, a skip reason (discovery
// miss), or a fatal error (explicit path absent, or no way to locate the
// input at all).
func resolveOne(explicit, sourceDir string, candidates []string, label, flagName string) (path, skip string, err error) {
	explicit = strings.TrimSpace(explicit)
	if explicit != "" {
		info, statErr := os.Stat(explicit)
		if statErr != nil || !info.Mode().IsRegular() {
			return "", "", services.Wrap(services.ErrSource, "export", "resolve",
				fmt.Sprintf("%s not found: %s", label, explicit), statErr)
		}
		return explicit, "", nil
	}
	if sourceDir == "" {
		return "", "", services.Wrap(services.ErrConfiguration, "export", "resolve",
			fmt.Sprintf("missing %s source, provide %s or --source-dir", label, flagName), nil)
	}
	found, findErr := FindCandidateFile(sourceDir, candidates)
	if findErr != nil {
		return "", "", services.Wrap(services.ErrSource, "export", "resolve", sourceDir, findErr)
	}
	if found == "" {
		return "", fmt.Sprintf("%s: no candidate found under %s", label, sourceDir), nil
	}
	return found, "", nil
}

func (e *Exporter) exportTitles(inputPath, packPath string) (int, error) {
	snapshot, err := titles.LoadSnapshot(inputPath)
	if err != nil {
		return 0, err
	}
	count, err := pack.WriteTitles(packPath, snapshot)
	if err != nil {
		return 0, services.Wrap(services.ErrSource, "export", "titles pack", "", err)
	}
	return count, nil
}

func (e *Exporter) exportIcons(ctx context.Context, storePath, packPath string) (int, error) {
	store, err := imagestore.Open(storePath)
	if err != nil {
		return 0, services.Wrap(services.ErrSource, "export", "open store", storePath, err)
	}
	defer store.Close()

	writer, err := pack.NewIconWriter(packPath)
	if err != nil {
		return 0, services.Wrap(services.ErrSource, "export", "icons pack", "", err)
	}
	defer writer.Abort()

	packed := 0
	err = store.ForEachPayload(ctx, func(payload imagestore.Payload) error {
		if err := writer.Add(payload.TitleID, payload.Format, payload.Image); err != nil {
			return err
		}
		packed++
		if packed%1000 == 0 {
			e.logger.DebugContext(ctx, "icons packed", logging.Int("count", packed))
		}
		return nil
	})
	if err != nil {
		return 0, services.Wrap(services.ErrSource, "export", "icons pack", "", err)
	}

	count, err := writer.Finalize()
	if err != nil {
		return 0, services.Wrap(services.ErrSource, "export", "icons pack", "", err)
	}
	return count, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
