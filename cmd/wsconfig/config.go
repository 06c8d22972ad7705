// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/internal/config"
	"github.com/websublime/wsconfig/internal/issue"
	"github.com/websublime/wsconfig/pkg/types"
)

func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage wsconfig settings",
		Long: `Manage the wsconfig settings file.

Settings are read from ` + CmdStyle.Render(config.ConfigFileName+"."+config.ConfigFileExt) + ` in the configuration directory, then in the
current directory. Environment variables prefixed with ` + config.EnvPrefix + `_ override
file values.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := app.Config.Load(cmd.Context(), app.loadOptions(flags))
				if err != nil {
					ae := issue.WrapWithContext(err, "load settings", flags.configPath)
					ae.Issue = issue.ConfigLoadFailedId
					return &ExitError{Code: types.ExitFailure, Err: ae}
				}
				fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file in use",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				path, err := config.Locate(app.loadOptions(flags))
				if err != nil {
					return &ExitError{Code: types.ExitFailure, Err: issue.WrapWithContext(err, "locate settings", flags.configPath)}
				}
				if path == "" {
					if path, err = config.DefaultPath(app.loadOptions(flags)); err != nil {
						return &ExitError{Code: types.ExitFailure, Err: issue.WrapWithContext(err, "locate settings", "")}
					}
					fmt.Fprintln(app.stdout, path+SubtitleStyle.Render(" (not present, defaults apply)"))
					return nil
				}
				fmt.Fprintln(app.stdout, path)
				return nil
			},
		},
		newConfigInitCommand(app, flags),
		&cobra.Command{
			Use:   "dump",
			Short: "Print the CUE schema settings are validated against",
			Args:  cobra.NoArgs,
			RunE: func(_ *cobra.Command, _ []string) error {
				fmt.Fprint(app.stdout, config.Schema())
				return nil
			},
		},
	)

	return cmd
}

func newConfigInitCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a settings file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			opts := app.loadOptions(flags)
			path := opts.ConfigFilePath
			if path == "" {
				var err error
				if path, err = config.DefaultPath(opts); err != nil {
					return &ExitError{Code: types.ExitFailure, Err: err}
				}
			}

			if err := config.WriteDefault(app.FS, path, force); err != nil {
				ctx := issue.NewErrorContext().
					WithOperation("write settings").
					WithResource(path).
					Wrap(err)
				if errors.Is(err, config.ErrConfigExists) {
					ctx.WithSuggestion("Pass --force to overwrite it")
				}
				return &ExitError{Code: types.ExitFailure, Err: ctx.BuildError()}
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render("Wrote ")+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}
