package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"foildb/internal/export"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var req export.Request

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write distribution packs and manifest",
		Long: "Export serializes the icon store and the title snapshot into binary " +
			"packs plus an integrity manifest. Inputs come from explicit flags or " +
			"are discovered under --source-dir; a missing discovered input skips " +
			"its pack, and the manifest is only written when both packs were " +
			"produced by this invocation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			result, err := export.New(cfg, logger).Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			printExportResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.IconDB, "icon-db", "", "Explicit path to the icon row store")
	cmd.Flags().StringVar(&req.TitlesJSON, "titles-json", "", "Explicit path to the generated title snapshot")
	cmd.Flags().StringVar(&req.SourceDir, "source-dir", "", "Directory to discover inputs in")
	cmd.Flags().StringVar(&req.OutputDir, "output-dir", "", "Destination directory (defaults to the configured export dir)")
	cmd.Flags().BoolVar(&req.SkipIcons, "skip-icons", false, "Do not export the icon pack")
	cmd.Flags().BoolVar(&req.SkipMetadata, "skip-metadata", false, "Do not export the title pack")
	cmd.Flags().StringVar(&req.BaseURL, "manifest-base-url", "", "Base URL prefixed to manifest file entries")
	cmd.Flags().StringVar(&req.ManifestName, "manifest-name", "", "Manifest file name")
	cmd.Flags().StringVar(&req.DBVersion, "db-version", "", "Manifest db_version (defaults to a UTC timestamp)")

	return cmd
}

func printExportResult(out io.Writer, result export.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for _, pack := range []*export.PackResult{result.TitlesPack, result.IconsPack} {
		if pack == nil {
			continue
		}
		fmt.Fprintf(out, "%s: %d entries (%s)\n",
			pack.Name, pack.Count, humanize.IBytes(uint64(pack.SizeBytes)))
	}
	for _, skip := range result.Skips {
		fmt.Fprintln(out, yellow("skipped "+skip))
	}
	switch {
	case result.ManifestPath != "":
		fmt.Fprintln(out, green("manifest written to "+result.ManifestPath))
	case result.TitlesPack != nil || result.IconsPack != nil:
		fmt.Fprintln(out, yellow("manifest skipped, requires both packs in one invocation"))
	default:
		fmt.Fprintln(out, yellow("nothing exported"))
	}
}
