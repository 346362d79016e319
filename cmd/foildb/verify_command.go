package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"foildb/internal/export"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [manifest]",
		Short: "Check exported packs against their manifest",
		Long: "Verify recomputes size and SHA-256 for every file a manifest " +
			"references and structurally decodes the packs. Without an argument " +
			"the configured manifest path is checked.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path := cfg.ManifestPath()
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				path = args[0]
			}

			manifest, issues, err := export.VerifyManifest(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(issues) == 0 {
				green := color.New(color.FgGreen).SprintFunc()
				fmt.Fprintln(out, green(fmt.Sprintf("manifest OK: %d file(s), db_version %s",
					len(manifest.Files), manifest.DBVersion)))
				return nil
			}

			red := color.New(color.FgRed).SprintFunc()
			for _, issue := range issues {
				fmt.Fprintln(out, red(fmt.Sprintf("%s: %s", issue.Name, issue.Detail)))
			}
			return fmt.Errorf("manifest verification failed: %d issue(s)", len(issues))
		},
	}
	return cmd
}
