// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/internal/watch"
	"github.com/websublime/wsconfig/pkg/fspath"
	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/manifest"
	"github.com/websublime/wsconfig/pkg/plugin"
)

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		host    hostFlags
		tf      transformFlags
		pkgRoot string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-apply the workspace config whenever a manifest changes",
		Long: `Run "apply" once, then again each time a package manifest under the
workspace roots changes. The manifest of the package being built and the input
host configuration are watched as well. Set --out to keep a generated
configuration file up to date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			req := transformRequest{
				operation: "apply workspace config",
				host:      host,
				pkgRoot:   pkgRoot,
			}
			if err := req.validate(); err != nil {
				return classifyError(err, "watch workspace")
			}
			s, err := app.newSession(ctx, flags)
			if err != nil {
				return classifyError(err, "load settings")
			}
			b, err := s.aliasBuilder(app.FS, tf)
			if err != nil {
				return classifyError(err, "watch workspace")
			}
			req.build = func(s *session) (plugin.Pipeline, error) {
				return plugin.Pipeline{b, s.buildMerger(app.FS)}, nil
			}

			// Failures are reported and the watch continues; a later edit may
			// fix the manifest.
			apply := func(ctx context.Context) {
				if err := app.transformOnce(ctx, s, req); err != nil {
					printError(app.stderr, classifyError(err, req.operation), flags.verbose)
				}
			}
			apply(ctx)

			roots := make([]string, 0, len(b.Roots()))
			for _, r := range b.Roots() {
				roots = append(roots, string(r))
			}
			files := app.watchedFiles(ctx, s, req)

			w, err := watch.New(watch.Config{
				Roots:       roots,
				Files:       files,
				Patterns:    watch.ManifestPatterns(s.cfg.ManifestFiles),
				Ignore:      s.cfg.Ignore,
				Debounce:    s.cfg.Watch.Debounce,
				ClearScreen: s.cfg.Watch.ClearScreen,
				Stdout:      app.stderr,
				Logger:      s.logger,
				OnChange: func(ctx context.Context, changed []string) error {
					s.logger.InfoContext(ctx, "change detected", slog.Any("paths", changed))
					apply(ctx)
					return nil
				},
			})
			if err != nil {
				return classifyError(err, "watch workspace")
			}
			s.logger.InfoContext(ctx, "watching workspace", slog.Any("roots", roots), slog.Any("files", files))
			return classifyError(w.Run(ctx), "watch workspace")
		},
	}

	addHostFlags(cmd, &host, true)
	addTransformFlags(cmd, &tf)
	cmd.Flags().StringVarP(&pkgRoot, "package", "p", "", "package directory to build (overrides the host configuration's root)")
	return cmd
}

// watchedFiles lists the individual files whose changes re-run apply: the
// host configuration file and the candidate manifests of the package being
// built. That package may live outside every scanned root.
func (a *App) watchedFiles(ctx context.Context, s *session, req transformRequest) []string {
	var files []string

	in := hostconfig.Config{}
	if req.host.input != "" && req.host.input != "-" {
		files = append(files, req.host.input)
		cfg, err := a.readHost(req.host.input)
		if err != nil {
			s.logger.WarnContext(ctx, "cannot read host config to locate the package", slog.Any("error", err))
		} else {
			in = cfg
		}
	}
	if req.pkgRoot != "" {
		in = in.Copy()
		in[hostconfig.KeyRoot] = req.pkgRoot
	}

	pkgRoot, err := s.buildMerger(a.FS).PackageRoot(in)
	if err != nil {
		s.logger.WarnContext(ctx, "package manifest not watched", slog.Any("error", err))
		return files
	}

	names := s.cfg.ManifestFiles
	if len(names) == 0 {
		names = manifest.DefaultFileNames
	}
	for _, name := range names {
		files = append(files, string(fspath.JoinStr(pkgRoot, name)))
	}
	return files
}
