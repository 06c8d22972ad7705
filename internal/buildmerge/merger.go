// SPDX-License-Identifier: MPL-2.0

package buildmerge

import (
	"context"
	"fmt"
	"log/slog"

	"dario.cat/mergo"
	"github.com/spf13/afero"

	"github.com/websublime/wsconfig/internal/workspace"
	"github.com/websublime/wsconfig/pkg/fspath"
	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/manifest"
	"github.com/websublime/wsconfig/pkg/plugin"
	"github.com/websublime/wsconfig/pkg/types"
)

// PluginName identifies the build merge transform in a plugin pipeline.
const PluginName = "vite-plugin-workspace-rollup"

var _ plugin.Plugin = (*Merger)(nil)

type (
	// Merger folds a package's manifest build fragment into the host
	// configuration. It holds no state between calls.
	Merger struct {
		opts settings
	}

	// settings holds the Merger's collaborators. Zero fields are filled from
	// defaultSettings.
	settings struct {
		FS            afero.Fs
		Reader        manifest.Reader
		WorkspaceRoot types.FilesystemPath
		Logger        *slog.Logger
	}

	// Option configures a Merger.
	Option func(*Merger)
)

// WithWorkspaceRoot anchors relative package roots. When unset, the
// workspace root is discovered from the working directory on each call.
func WithWorkspaceRoot(root types.FilesystemPath) Option {
	return func(m *Merger) {
		m.opts.WorkspaceRoot = root
	}
}

// WithFS sets the filesystem manifests are read from.
func WithFS(fsys afero.Fs) Option {
	return func(m *Merger) {
		m.opts.FS = fsys
	}
}

// WithReader sets the manifest reader. It takes precedence over WithFS for
// manifest loading.
func WithReader(r manifest.Reader) Option {
	return func(m *Merger) {
		m.opts.Reader = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Merger) {
		m.opts.Logger = l
	}
}

func defaultSettings() settings {
	return settings{
		FS:     afero.NewOsFs(),
		Logger: slog.Default(),
	}
}

// New creates a Merger.
func New(opts ...Option) *Merger {
	m := &Merger{}
	for _, opt := range opts {
		opt(m)
	}
	// mergo only fails on mismatched types.
	if err := mergo.Merge(&m.opts, defaultSettings()); err != nil {
		panic(fmt.Sprintf("buildmerge: applying defaults: %v", err))
	}
	if m.opts.Reader == nil {
		m.opts.Reader = manifest.NewReader(m.opts.FS)
	}
	return m
}

// Name returns PluginName.
func (m *Merger) Name() string { return PluginName }

// PackageRoot returns the absolute package directory named by cfg's root.
// A missing root means the workspace root itself.
func (m *Merger) PackageRoot(cfg hostconfig.Config) (types.FilesystemPath, error) {
	wsRoot, err := m.resolveWorkspaceRoot()
	if err != nil {
		return "", err
	}

	v, ok := cfg[hostconfig.KeyRoot]
	if !ok || v == nil {
		return wsRoot, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &InvalidRootError{Value: v}
	}
	return fspath.Resolve(wsRoot, s), nil
}

// Config reads the manifest in the package root and merges its build
// fragment:
//
//	build = {...in.build, ...frag.build,
//	         rollupOptions: {...in.build.rollupOptions, ...frag.build.rollupOptions, ...frag.rollupOptions}}
//
// The fragment's rollupOptions.input entries are resolved against the
// package root. When the manifest declares no fragment, build is left as is.
func (m *Merger) Config(ctx context.Context, cfg hostconfig.Config) (hostconfig.Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("build merge canceled: %w", err)
	}

	pkgRoot, err := m.PackageRoot(cfg)
	if err != nil {
		return nil, err
	}

	man, err := m.opts.Reader.Read(pkgRoot)
	if err != nil {
		return nil, err
	}

	out := cfg.Copy()
	frag := man.Fragment()
	if frag.IsEmpty() {
		m.opts.Logger.DebugContext(ctx, "package declares no build config", slog.String("root", string(pkgRoot)))
		return out, nil
	}

	rollup := frag.RollupOptions
	if input, ok := rollup[hostconfig.KeyInput]; ok {
		rollup[hostconfig.KeyInput] = ResolveInput(pkgRoot, input)
	}

	inBuild := cfg.Section(hostconfig.KeyBuild)
	build := hostconfig.Overlay(inBuild, frag.Build)
	build[hostconfig.KeyRollupOptions] = hostconfig.Overlay(
		hostconfig.AsMap(inBuild[hostconfig.KeyRollupOptions]),
		hostconfig.AsMap(frag.Build[hostconfig.KeyRollupOptions]),
		rollup,
	)
	out[hostconfig.KeyBuild] = build

	m.opts.Logger.DebugContext(ctx, "merged package build config",
		slog.String("root", string(pkgRoot)),
		slog.Int("build_keys", len(frag.Build)),
		slog.Int("rollup_keys", len(rollup)))
	return out, nil
}

// ResolveInput resolves entry point paths against root. A mapping has each
// string value resolved, a string is resolved directly, and a list has each
// string element resolved. Other values are returned unchanged. The result
// never shares a mapping or list with input.
func ResolveInput(root types.FilesystemPath, input any) any {
	if entries := hostconfig.AsMap(input); entries != nil {
		out := make(map[string]any, len(entries))
		for name, v := range entries {
			out[name] = resolveEntry(root, v)
		}
		return out
	}
	if list, ok := input.([]any); ok {
		out := make([]any, len(list))
		for i, v := range list {
			out[i] = resolveEntry(root, v)
		}
		return out
	}
	return resolveEntry(root, input)
}

func resolveEntry(root types.FilesystemPath, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return string(fspath.Resolve(root, s))
}

func (m *Merger) resolveWorkspaceRoot() (types.FilesystemPath, error) {
	if m.opts.WorkspaceRoot != "" {
		return fspath.Abs(m.opts.WorkspaceRoot)
	}
	root, _, err := workspace.FindRoot(m.opts.FS, ".")
	if err != nil {
		return "", fmt.Errorf("locating workspace root: %w", err)
	}
	return root, nil
}
