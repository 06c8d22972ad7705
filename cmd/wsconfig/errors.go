// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"

	"github.com/websublime/wsconfig/internal/alias"
	"github.com/websublime/wsconfig/internal/buildmerge"
	"github.com/websublime/wsconfig/internal/issue"
	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/manifest"
	"github.com/websublime/wsconfig/pkg/types"
)

// classifyError turns a transform failure into an ExitError whose cause is an
// ActionableError pointing at the matching troubleshooting guide. Errors that
// are already actionable keep their context.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	code := types.ExitFailure
	ctx := issue.NewErrorContext().WithOperation(operation).Wrap(err)

	var (
		notFound  *manifest.NotFoundError
		parseErr  *manifest.ParseError
		noSource  *alias.MissingSourceFieldError
		actionErr *issue.ActionableError
	)
	switch {
	case errors.As(err, &actionErr):
		return &ExitError{Code: code, Err: err}
	case errors.As(err, &notFound):
		code = types.ExitManifest
		ctx.WithResource(string(notFound.Dir)).
			WithIssue(issue.ManifestNotFoundId).
			WithSuggestions(
				"Check the root option of the host configuration or the --package flag",
				"Add a package.json to the package directory",
			)
	case errors.As(err, &parseErr):
		code = types.ExitManifest
		ctx.WithResource(string(parseErr.Path)).
			WithIssue(issue.ManifestParseErrorId).
			WithSuggestion("Fix the syntax of the manifest; it must be a JSON or YAML object")
	case errors.As(err, &noSource):
		code = types.ExitManifest
		ctx.WithResource(string(noSource.Dir)).
			WithIssue(issue.MissingSourceFieldId).
			WithSuggestions(
				"Add a \"source\" entry to the manifest",
				"Or exclude the package with --exclude "+string(noSource.Package),
			)
	case errors.Is(err, buildmerge.ErrInvalidRoot):
		code = types.ExitUsage
		ctx.WithIssue(issue.InvalidRootId).
			WithSuggestion("Set root to a directory path string, or remove it")
	case errors.Is(err, hostconfig.ErrUnsupportedFormat):
		code = types.ExitUsage
		ctx.WithIssue(issue.UnsupportedFormatId).
			WithSuggestion("Use one of: " + strings.Join(formatNames(), ", "))
	case errors.Is(err, types.ErrInvalidFilesystemPath):
		code = types.ExitUsage
		ctx.WithSuggestion("Pass a non-blank directory path")
	}

	return &ExitError{Code: code, Err: ctx.BuildError()}
}
