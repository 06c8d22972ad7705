// SPDX-License-Identifier: MPL-2.0

package alias

import (
	"log/slog"

	"github.com/spf13/afero"

	"github.com/websublime/wsconfig/internal/workspace"
	"github.com/websublime/wsconfig/pkg/types"
)

type (
	options struct {
		scan   workspace.Options
		logger *slog.Logger
	}

	// Option configures a Builder.
	Option func(*options)
)

// WithFS sets the filesystem packages are scanned from.
func WithFS(fsys afero.Fs) Option {
	return func(o *options) {
		o.scan.FS = fsys
	}
}

// WithBaseDir anchors relative workspace roots. Default is the working directory.
func WithBaseDir(dir types.FilesystemPath) Option {
	return func(o *options) {
		o.scan.BaseDir = dir
	}
}

// WithManifestFiles sets the manifest file names tried in each package directory.
func WithManifestFiles(names ...string) Option {
	return func(o *options) {
		o.scan.ManifestFiles = names
	}
}

// WithIgnore skips package directories whose names match any of the
// doublestar patterns.
func WithIgnore(patterns ...string) Option {
	return func(o *options) {
		o.scan.Ignore = patterns
	}
}

// WithLogger sets the logger used for diagnostics and the alias summary.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}
