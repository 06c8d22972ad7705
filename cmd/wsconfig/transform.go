// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/plugin"
	"github.com/websublime/wsconfig/pkg/types"
)

// transformRequest describes one run of a transform command.
type transformRequest struct {
	operation string
	host      hostFlags
	// pkgRoot, when set, replaces the host configuration's root.
	pkgRoot string
	build   func(s *session) (plugin.Pipeline, error)
}

// validate checks flag values before any file is read.
func (r transformRequest) validate() error {
	if r.pkgRoot == "" {
		return nil
	}
	if err := types.FilesystemPath(r.pkgRoot).Validate(); err != nil {
		return fmt.Errorf("--package: %w", err)
	}
	return nil
}

func addHostFlags(cmd *cobra.Command, h *hostFlags, withOutput bool) {
	cmd.Flags().StringVarP(&h.input, "input", "i", "", `host configuration file (json, yaml, toml or cue; "-" reads JSON from stdin)`)
	cmd.Flags().StringVarP(&h.format, "format", "f", "", "output format: "+strings.Join(formatNames(), ", ")+" (default from settings)")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
	if withOutput {
		cmd.Flags().StringVarP(&h.output, "out", "o", "", "write the result to a file instead of stdout")
	}
}

func addTransformFlags(cmd *cobra.Command, tf *transformFlags) {
	cmd.Flags().StringSliceVarP(&tf.roots, "root", "r", nil, "workspace root to scan for packages (repeatable; replaces configured roots)")
	cmd.Flags().StringSliceVarP(&tf.exclude, "exclude", "x", nil, "package name that receives no alias (repeatable)")
}

// formatNames lists the encodings accepted by --format.
func formatNames() []string {
	names := make([]string, 0, len(hostconfig.Formats()))
	for _, f := range hostconfig.Formats() {
		names = append(names, f.String())
	}
	return names
}

func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return formatNames(), cobra.ShellCompDirectiveNoFileComp
}

// runTransform loads the host configuration, runs the request's pipeline over
// it and writes the result.
func (a *App) runTransform(ctx context.Context, flags *rootFlagValues, req transformRequest) error {
	if err := req.validate(); err != nil {
		return classifyError(err, req.operation)
	}
	s, err := a.newSession(ctx, flags)
	if err != nil {
		return classifyError(err, "load settings")
	}
	return classifyError(a.transformOnce(ctx, s, req), req.operation)
}

func (a *App) transformOnce(ctx context.Context, s *session, req transformRequest) error {
	p, err := req.build(s)
	if err != nil {
		return err
	}

	in, err := a.readHost(req.host.input)
	if err != nil {
		return err
	}
	if req.pkgRoot != "" {
		in = in.Copy()
		in[hostconfig.KeyRoot] = req.pkgRoot
	}

	s.logger.DebugContext(ctx, "running config hooks", "plugins", p.Names())
	out, err := p.Apply(ctx, in)
	if err != nil {
		return err
	}
	return a.writeHost(req.host, s.cfg.OutputFormat, out)
}
