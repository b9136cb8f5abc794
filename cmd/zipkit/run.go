// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zipkit/zipkit/pkg/archive"
	"github.com/zipkit/zipkit/pkg/manifest"
)

// newRunCommand creates the `zipkit run` command.
func newRunCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <manifest>",
		Short: "Create the archive described by a manifest file",
		Long: `Create the archive described by a manifest file (.cue or .toml).

Relative paths in the manifest, including its output, are resolved against
the manifest's directory. Options set in the manifest override the config
file.

` + SubtitleStyle.Render("Example manifest (job.cue):") + `
  output: "dist/release.zip"
  prefix: "build/"
  files: ["build/app", "build/README.md"]
  entries: [{name: "state.json", content: "{}"}]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd, app, args[0])
		},
	}
}

func runManifest(cmd *cobra.Command, app *App, path string) error {
	ctx := cmd.Context()

	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(err, "", app.verbose)
	}

	m, err := manifest.Load(path)
	if err != nil {
		return app.fail(err, "", app.verbose)
	}
	dest := m.Destination()

	logger := app.newLogger(app.verbose)
	logger.Debug("running manifest", "manifest", path, "dest", dest, "config", cfg.Source)

	opts := append(cfg.ArchiveOptions(), archive.WithLogger(logger))
	res, err := m.Run(ctx, opts...)
	if err != nil {
		return app.fail(err, dest, app.verbose)
	}

	printResult(app, dest, res)
	return nil
}
