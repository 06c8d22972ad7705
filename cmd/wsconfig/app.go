// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/websublime/wsconfig/internal/alias"
	"github.com/websublime/wsconfig/internal/buildmerge"
	"github.com/websublime/wsconfig/internal/config"
	"github.com/websublime/wsconfig/internal/workspace"
	"github.com/websublime/wsconfig/pkg/fspath"
	"github.com/websublime/wsconfig/pkg/manifest"
	"github.com/websublime/wsconfig/pkg/plugin"
	"github.com/websublime/wsconfig/pkg/types"
)

type (
	// App is the composition root of the CLI. Command handlers receive an App
	// and reach the filesystem, configuration and output streams through it.
	App struct {
		Config ConfigProvider
		FS     afero.Fs
		stdin  io.Reader
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies are the injection points for NewApp. Nil fields are
	// replaced with production defaults.
	Dependencies struct {
		Config ConfigProvider
		FS     afero.Fs
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads wsconfig settings.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// session is the per-invocation state shared by the transform commands.
	session struct {
		cfg           *config.Config
		workspaceRoot types.FilesystemPath
		logger        *slog.Logger
		reader        manifest.Reader
	}

	// transformFlags select the packages the alias transform sees.
	transformFlags struct {
		roots   []string
		exclude []string
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.FS == nil {
		deps.FS = afero.NewOsFs()
	}
	if deps.Stdin == nil {
		deps.Stdin = os.Stdin
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	return &App{
		Config: deps.Config,
		FS:     deps.FS,
		stdin:  deps.Stdin,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

func (a *App) loadOptions(flags *rootFlagValues) config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: flags.configPath, FS: a.FS}
}

// newSession loads settings and resolves the workspace root: the
// --workspace-root flag wins over the workspace_root setting, which wins over
// discovery from the working directory.
func (a *App) newSession(ctx context.Context, flags *rootFlagValues) (*session, error) {
	cfg, err := a.Config.Load(ctx, a.loadOptions(flags))
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel.Level()
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := newLogger(a.stderr, level)

	if flags.workspaceRoot != "" {
		if err := types.FilesystemPath(flags.workspaceRoot).Validate(); err != nil {
			return nil, fmt.Errorf("--workspace-root: %w", err)
		}
	}

	var root types.FilesystemPath
	switch {
	case flags.workspaceRoot != "":
		root, err = fspath.Abs(types.FilesystemPath(flags.workspaceRoot))
	case cfg.WorkspaceRoot != "":
		root, err = fspath.Abs(types.FilesystemPath(cfg.WorkspaceRoot))
	default:
		var found bool
		root, found, err = workspace.FindRoot(a.FS, ".")
		if err == nil && !found {
			logger.DebugContext(ctx, "no workspace marker found, using the working directory", slog.String("root", string(root)))
		}
	}
	if err != nil {
		return nil, err
	}

	return &session{
		cfg:           cfg,
		workspaceRoot: root,
		logger:        logger,
		reader:        manifest.NewReader(a.FS, cfg.ManifestFiles...),
	}, nil
}

// aliasBuilder creates the alias transform. Flag roots replace the configured
// ones; flag exclusions add to them.
func (s *session) aliasBuilder(fsys afero.Fs, tf transformFlags) (*alias.Builder, error) {
	rootNames := s.cfg.Roots
	if len(tf.roots) > 0 {
		rootNames = tf.roots
	}
	roots := make([]types.FilesystemPath, len(rootNames))
	for i, r := range rootNames {
		roots[i] = types.FilesystemPath(r)
	}

	names := append(append([]string(nil), s.cfg.Exclude...), tf.exclude...)
	exclude := make([]types.PackageName, len(names))
	for i, n := range names {
		exclude[i] = types.PackageName(n)
	}

	return alias.New(roots, exclude,
		alias.WithFS(fsys),
		alias.WithManifestFiles(s.cfg.ManifestFiles...),
		alias.WithBaseDir(s.workspaceRoot),
		alias.WithIgnore(s.cfg.Ignore...),
		alias.WithLogger(s.logger),
	)
}

func (s *session) buildMerger(fsys afero.Fs) *buildmerge.Merger {
	return buildmerge.New(
		buildmerge.WithFS(fsys),
		buildmerge.WithReader(s.reader),
		buildmerge.WithWorkspaceRoot(s.workspaceRoot),
		buildmerge.WithLogger(s.logger),
	)
}

// pipeline returns both transforms in the order a bundler runs them.
func (s *session) pipeline(fsys afero.Fs, tf transformFlags) (plugin.Pipeline, error) {
	b, err := s.aliasBuilder(fsys, tf)
	if err != nil {
		return nil, err
	}
	return plugin.Pipeline{b, s.buildMerger(fsys)}, nil
}
