// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/pkg/plugin"
)

func newApplyCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		host    hostFlags
		tf      transformFlags
		pkgRoot string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Run the alias and build transforms in plugin order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runTransform(cmd.Context(), flags, transformRequest{
				operation: "apply workspace config",
				host:      host,
				pkgRoot:   pkgRoot,
				build: func(s *session) (plugin.Pipeline, error) {
					return s.pipeline(app.FS, tf)
				},
			})
		},
	}

	addHostFlags(cmd, &host, true)
	addTransformFlags(cmd, &tf)
	cmd.Flags().StringVarP(&pkgRoot, "package", "p", "", "package directory to build (overrides the host configuration's root)")
	return cmd
}
