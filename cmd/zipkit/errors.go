// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/zipkit/zipkit/internal/config"
	"github.com/zipkit/zipkit/internal/issue"
	"github.com/zipkit/zipkit/pkg/archive"
	"github.com/zipkit/zipkit/pkg/manifest"
	"github.com/zipkit/zipkit/pkg/sink"
	"github.com/zipkit/zipkit/pkg/types"
)

// classify wraps err in an ActionableError with an operation, a resource and
// a catalogued issue. Errors that are already actionable pass through.
func classify(err error, dest string) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	ctx := issue.NewErrorContext().Wrap(err)

	var ioErr *archive.IOError
	switch {
	case errors.Is(err, manifest.ErrInvalidManifest):
		var mErr *manifest.Error
		resource := ""
		if errors.As(err, &mErr) {
			resource = mErr.Path
		}
		ctx.WithOperation("load manifest").
			WithResource(resource).
			WithIssue(issue.ManifestInvalidId)

	case errors.Is(err, archive.ErrInvalidOptions):
		ctx.WithOperation("configure archive").
			WithIssue(issue.InvalidOptionsId).
			WithSuggestion("Run 'zipkit create --help' to see accepted values")

	case errors.Is(err, sink.ErrInvalidDestination):
		ctx.WithOperation("open destination").
			WithResource(dest).
			WithIssue(issue.OutputNotWritableId).
			WithSuggestion("Blob URLs need an object name, e.g. file:///tmp/archives/out.zip")

	case errors.As(err, &ioErr) && (ioErr.Op == archive.OpOpenInput || ioErr.Op == archive.OpReadInput):
		ctx.WithOperation(ioErr.Op).WithResource(ioErr.Path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			ctx.WithIssue(issue.InputNotFoundId).
				WithSuggestion("Check the path for typos")
		case errors.Is(err, fs.ErrPermission):
			ctx.WithIssue(issue.PermissionDeniedId).
				WithSuggestion("Make sure the file is readable by your user")
		case errors.Is(err, archive.ErrNotRegularFile):
			ctx.WithSuggestion("Directories are not expanded; pass the files inside them instead")
		}
		ctx.WithSuggestion(fmt.Sprintf("The partial archive at %s only contains the entries before this one", dest))

	case errors.As(err, &ioErr):
		resource := ioErr.Path
		if resource == "" {
			resource = dest
		}
		ctx.WithOperation(ioErr.Op).WithResource(resource)
		if errors.Is(err, fs.ErrPermission) {
			ctx.WithIssue(issue.PermissionDeniedId)
		} else {
			ctx.WithIssue(issue.OutputNotWritableId)
		}
		ctx.WithSuggestion("Check that the destination directory exists and is writable")

	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrInvalidLoadOptions),
		errors.Is(err, types.ErrInvalidFilesystemPath):
		ctx.WithOperation("load configuration").WithIssue(issue.ConfigLoadFailedId)

	default:
		ctx.WithOperation("create archive").WithResource(dest)
	}

	return ctx.Build()
}

// fail renders err to stderr and returns an ExitError so that the root
// command exits non-zero without printing it again.
func (a *App) fail(err error, dest string, verbose bool) error {
	ae := classify(err, dest)
	fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+ae.Format(verbose))

	if verbose {
		if guidance := ae.Guidance(); guidance != nil {
			rendered, renderErr := guidance.Render(a.guidanceStyle())
			if renderErr == nil {
				fmt.Fprint(a.stderr, rendered)
			}
		}
	}

	return &ExitError{Code: types.ExitFailure, Err: ae}
}

// guidanceStyle maps the configured color scheme onto a glamour style. Any
// config problem falls back to "auto".
func (a *App) guidanceStyle() string {
	if a.colorScheme != "" {
		return a.colorScheme.String()
	}
	return config.ColorSchemeAuto.String()
}
