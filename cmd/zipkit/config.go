// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zipkit/zipkit/internal/config"
)

// newConfigCommand creates the `zipkit config` command group.
func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize the zipkit configuration",
		Long: `Inspect and initialize the zipkit configuration.

The config file is CUE. It is looked up at --config, then in the config
directory, then as ./config.cue. ZIPKIT_* environment variables override
individual keys, e.g. ZIPKIT_STORAGE_METHOD=stored.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runConfigShow(cmd, app)
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return runConfigPath(app)
			},
		},
		&cobra.Command{
			Use:   "init",
			Short: "Write a default config file if none exists",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				return runConfigInit(app)
			},
		},
	)

	return cmd
}

func runConfigShow(cmd *cobra.Command, app *App) error {
	cfg, err := app.loadConfig(cmd.Context())
	if err != nil {
		return app.fail(err, "", app.verbose)
	}

	source := cfg.Source
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("// source: "+source))
	fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	return nil
}

func runConfigPath(app *App) error {
	path, exists, err := config.FilePath(app.loadOptions())
	if err != nil {
		return app.fail(err, "", app.verbose)
	}

	if exists {
		fmt.Fprintln(app.stdout, CmdStyle.Render(path))
		return nil
	}
	fmt.Fprintf(app.stdout, "%s %s\n", CmdStyle.Render(path), WarningStyle.Render("(not found, using defaults)"))
	return nil
}

func runConfigInit(app *App) error {
	path, created, err := config.CreateDefaultConfig(app.loadOptions())
	if err != nil {
		return app.fail(err, path, app.verbose)
	}

	if created {
		fmt.Fprintf(app.stdout, "%s created %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(path))
		return nil
	}
	fmt.Fprintf(app.stdout, "%s already exists, left unchanged\n", CmdStyle.Render(path))
	return nil
}
