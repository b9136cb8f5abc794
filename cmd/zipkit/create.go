// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zipkit/zipkit/pkg/archive"
	"github.com/zipkit/zipkit/pkg/sink"
)

// errInvalidEntryFlag is returned for --entry values without a name.
var errInvalidEntryFlag = errors.New("invalid --entry value")

type createFlags struct {
	output     string
	prefix     string
	prefixMode string
	method     string
	bufferSize int
	level      int
	entries    []string
}

// newCreateCommand creates the `zipkit create` command.
func newCreateCommand(app *App) *cobra.Command {
	var flags createFlags

	cmd := &cobra.Command{
		Use:   "create -o <dest> [paths...]",
		Short: "Create an archive from files and inline entries",
		Long: `Create an archive from files and inline entries.

Files are added in the order given, followed by --entry values in the order
given. Entry names for files are their paths with --prefix removed; inline
entry names are used as written.

<dest> is a filesystem path or a blob URL such as file:///tmp/out.zip.
mem://bucket/out.zip builds the archive in memory and discards it, which is
useful to check inputs and see the resulting size and digest.

` + SubtitleStyle.Render("Entry syntax:") + `
  --entry name=text     entry "name" holding the literal text
  --entry name=@path    entry "name" holding the contents of path`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, app, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "destination path or blob URL (required)")
	cmd.Flags().StringVar(&flags.prefix, "prefix", "", "prefix removed from file entry names")
	cmd.Flags().StringVar(&flags.prefixMode, "prefix-mode", "", "prefix rule: first (anywhere in the path) or leading")
	cmd.Flags().StringVarP(&flags.method, "method", "m", "", "storage method: deflated or stored")
	cmd.Flags().IntVar(&flags.bufferSize, "buffer-size", 0, "copy chunk size in bytes")
	cmd.Flags().IntVar(&flags.level, "level", 0, "deflate level from -1 (default) to 9")
	cmd.Flags().StringArrayVarP(&flags.entries, "entry", "e", nil, "inline entry as name=text or name=@path (repeatable)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runCreate(cmd *cobra.Command, app *App, flags createFlags, paths []string) error {
	ctx := cmd.Context()

	cfg, err := app.loadConfig(ctx)
	if err != nil {
		return app.fail(err, flags.output, app.verbose)
	}

	opts := cfg.ArchiveOptions()
	opts, err = appendFlagOptions(cmd, flags, opts)
	if err != nil {
		return app.fail(err, flags.output, app.verbose)
	}
	logger := app.newLogger(app.verbose)
	opts = append(opts, archive.WithLogger(logger))

	w, err := archive.New(opts...)
	if err != nil {
		return app.fail(err, flags.output, app.verbose)
	}

	inputs := archive.Files(paths...)
	for _, raw := range flags.entries {
		in, err := parseEntryFlag(raw)
		if errors.Is(err, errInvalidEntryFlag) {
			// Reported by the root error handler as a usage error.
			return err
		}
		if err != nil {
			return app.fail(err, flags.output, app.verbose)
		}
		inputs = append(inputs, in)
	}

	logger.Debug("creating archive", "dest", flags.output, "inputs", len(inputs), "config", cfg.Source)

	res, err := writeArchive(ctx, w, flags.output, inputs)
	if err != nil {
		return app.fail(err, flags.output, app.verbose)
	}

	printResult(app, flags.output, res)
	return nil
}

// appendFlagOptions adds an option for every flag the user set explicitly, so
// that flags override config values.
func appendFlagOptions(cmd *cobra.Command, flags createFlags, opts []archive.Option) ([]archive.Option, error) {
	f := cmd.Flags()
	if f.Changed("prefix") {
		opts = append(opts, archive.WithPrefix(flags.prefix))
	}
	if f.Changed("prefix-mode") {
		opts = append(opts, archive.WithPrefixMode(archive.PrefixMode(flags.prefixMode)))
	}
	if f.Changed("method") {
		m, err := archive.ParseStorageMethod(flags.method)
		if err != nil {
			return nil, &archive.InvalidOptionsError{Field: "storage method", Reason: "unrecognized value", Cause: err}
		}
		opts = append(opts, archive.WithMethod(m))
	}
	if f.Changed("buffer-size") {
		opts = append(opts, archive.WithBufferSize(flags.bufferSize))
	}
	if f.Changed("level") {
		opts = append(opts, archive.WithCompressionLevel(flags.level))
	}
	return opts, nil
}

// parseEntryFlag turns "name=text" or "name=@path" into an in-memory input.
func parseEntryFlag(raw string) (archive.Input, error) {
	name, value, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w %q: expected name=text or name=@path", errInvalidEntryFlag, raw)
	}
	if path, isFile := strings.CutPrefix(value, "@"); isFile {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &archive.IOError{Op: archive.OpReadInput, Path: path, Err: err}
		}
		return archive.Bytes(name, data), nil
	}
	return archive.Bytes(name, []byte(value)), nil
}

// writeArchive opens dest through the sink package and writes inputs to it.
func writeArchive(ctx context.Context, w *archive.Writer, dest string, inputs []archive.Input) (res *archive.Result, err error) {
	out, err := sink.Open(ctx, dest)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			res, err = nil, &archive.IOError{Op: archive.OpCloseArchive, Path: dest, Err: closeErr}
		}
	}()

	return w.CompressToStream(out, inputs)
}

func printResult(app *App, dest string, res *archive.Result) {
	fmt.Fprintf(app.stdout, "%s wrote %s (%d entries, %d bytes)\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(dest), len(res.Entries), res.Size)
	fmt.Fprintf(app.stdout, "  %s\n", SubtitleStyle.Render(res.Digest.String()))
	if app.verbose {
		for _, e := range res.Entries {
			fmt.Fprintf(app.stdout, "  %s %d bytes crc32=%08x %s\n", e.Name, e.Size, e.CRC32, e.Method)
		}
	}
}
