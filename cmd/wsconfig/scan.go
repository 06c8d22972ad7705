// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/websublime/wsconfig/internal/alias"
	"github.com/websublime/wsconfig/internal/workspace"
	"github.com/websublime/wsconfig/pkg/types"
)

func newScanCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var tf transformFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List workspace packages and how each one is aliased",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := app.newSession(ctx, flags)
			if err != nil {
				return classifyError(err, "load settings")
			}
			b, err := s.aliasBuilder(app.FS, tf)
			if err != nil {
				return classifyError(err, "scan workspace")
			}
			reports, diags, err := b.Report(ctx)
			if err != nil {
				return classifyError(err, "scan workspace")
			}

			renderScan(app.stdout, s.workspaceRoot, b.Roots(), reports, diags)
			return nil
		},
	}

	addTransformFlags(cmd, &tf)
	return cmd
}

func renderScan(w io.Writer, wsRoot types.FilesystemPath, roots []types.FilesystemPath, reports []alias.PackageReport, diags []workspace.Diagnostic) {
	fmt.Fprintln(w, TitleStyle.Render("Workspace")+" "+string(wsRoot))
	for _, r := range roots {
		fmt.Fprintln(w, SubtitleStyle.Render("  root ")+relTo(wsRoot, r))
	}
	fmt.Fprintln(w)

	if len(reports) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("No package directories found."))
	} else {
		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(SubtitleStyle).
			Headers("NAME", "SOURCE", "DIRECTORY", "STATUS").
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return tableHeaderStyle
				}
				return tableCellStyle
			})
		for _, r := range reports {
			t.Row(string(r.Name), r.Source, relTo(wsRoot, r.Dir), statusLabel(r.Status))
		}
		fmt.Fprintln(w, t.Render())
	}

	for _, d := range diags {
		fmt.Fprintln(w, WarningStyle.Render(string(d.Severity)+": ")+d.Message)
	}
}

func statusLabel(s alias.Status) string {
	switch s {
	case alias.StatusAliased:
		return SuccessStyle.Render(string(s))
	case alias.StatusMissingSource, alias.StatusShadowed:
		return WarningStyle.Render(string(s))
	default:
		return SubtitleStyle.Render(string(s))
	}
}

// relTo shortens p to a path relative to base when p lies below it.
func relTo(base, p types.FilesystemPath) string {
	rel, err := filepath.Rel(string(base), string(p))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return string(p)
	}
	return rel
}
