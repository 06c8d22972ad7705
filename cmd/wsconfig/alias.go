// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/pkg/plugin"
)

func newAliasCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var (
		host hostFlags
		tf   transformFlags
	)

	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Add workspace package aliases to a host configuration",
		Long: `Scan the workspace roots and map every package name to the absolute path
of its source entry under resolve.alias. Aliases already present in the host
configuration are kept as they are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.runTransform(cmd.Context(), flags, transformRequest{
				operation: "apply workspace aliases",
				host:      host,
				build: func(s *session) (plugin.Pipeline, error) {
					b, err := s.aliasBuilder(app.FS, tf)
					if err != nil {
						return nil, err
					}
					return plugin.Pipeline{b}, nil
				},
			})
		},
	}

	addHostFlags(cmd, &host, true)
	addTransformFlags(cmd, &tf)
	return cmd
}
