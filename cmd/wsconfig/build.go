// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/pkg/plugin"
)

func newBuildCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		host    hostFlags
		pkgRoot string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Merge a package's own build options into a host configuration",
		Long: `Read the manifest of the package being built and merge its "config.build"
and "config.rollupOptions" into the host configuration's build section.
Entry points under rollupOptions.input are resolved against the package.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runTransform(cmd.Context(), flags, transformRequest{
				operation: "merge package build config",
				host:      host,
				pkgRoot:   pkgRoot,
				build: func(s *session) (plugin.Pipeline, error) {
					return plugin.Pipeline{s.buildMerger(app.FS)}, nil
				},
			})
		},
	}

	addHostFlags(cmd, &host, true)
	cmd.Flags().StringVarP(&pkgRoot, "package", "p", "", "package directory to build (overrides the host configuration's root)")
	return cmd
}
