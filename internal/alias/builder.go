// SPDX-License-Identifier: MPL-2.0

package alias

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/exp/slices"

	"github.com/websublime/wsconfig/internal/workspace"
	"github.com/websublime/wsconfig/pkg/fspath"
	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/manifest"
	"github.com/websublime/wsconfig/pkg/plugin"
	"github.com/websublime/wsconfig/pkg/types"
)

// PluginName identifies the alias transform in a plugin pipeline.
const PluginName = "vite-plugin-workspace-alias"

const (
	// StatusAliased marks a package whose source entry is in the alias table.
	StatusAliased Status = "aliased"
	// StatusShadowed marks an aliased package replaced by a later package
	// declaring the same name.
	StatusShadowed Status = "shadowed"
	// StatusExcluded marks a package named in the exclusion list.
	StatusExcluded Status = "excluded"
	// StatusUnnamed marks a manifest without a usable name.
	StatusUnnamed Status = "unnamed"
	// StatusNoManifest marks a directory without a readable manifest.
	StatusNoManifest Status = "no manifest"
	// StatusMissingSource marks a named package without a source entry.
	// Derive fails on it unless the package is excluded.
	StatusMissingSource Status = "missing source"
)

var _ plugin.Plugin = (*Builder)(nil)

type (
	// Table maps package names to absolute source entry paths.
	Table map[string]string

	// Status classifies a scanned package directory.
	Status string

	// PackageReport describes how one package directory was treated.
	PackageReport struct {
		Name   types.PackageName
		Dir    types.FilesystemPath
		Source string
		// Target is the alias target; empty unless Status is StatusAliased
		// or StatusShadowed.
		Target types.FilesystemPath
		Status Status
	}

	// Builder derives aliases from workspace roots. Roots and exclusions are
	// fixed at construction; every Config call rescans the filesystem.
	Builder struct {
		roots   []types.FilesystemPath
		exclude map[types.PackageName]struct{}
		scanner *workspace.Scanner
		logger  *slog.Logger
	}
)

// New creates a Builder over roots, skipping packages named in exclude.
func New(roots []types.FilesystemPath, exclude []types.PackageName, opts ...Option) (*Builder, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	scanner, err := workspace.NewScanner(o.scan)
	if err != nil {
		return nil, err
	}

	ex := make(map[types.PackageName]struct{}, len(exclude))
	for _, name := range exclude {
		ex[name] = struct{}{}
	}

	return &Builder{
		roots:   slices.Clone(roots),
		exclude: ex,
		scanner: scanner,
		logger:  o.logger,
	}, nil
}

// Name returns PluginName.
func (b *Builder) Name() string { return PluginName }

// Roots returns the absolute workspace roots the builder scans.
func (b *Builder) Roots() []types.FilesystemPath {
	out := make([]types.FilesystemPath, len(b.roots))
	for i, r := range b.roots {
		out[i] = b.scanner.Resolve(r)
	}
	return out
}

// Derive scans the workspace roots and returns the automatic alias table.
// Packages without a manifest or a usable name are skipped, as are excluded
// names; a name with surrounding whitespace also adds a warning. A named package without a source entry fails the whole derivation.
// When two packages share a name the later one wins and a warning is added.
func (b *Builder) Derive(ctx context.Context) (Table, []workspace.Diagnostic, error) {
	reports, diags, err := b.Report(ctx)
	if err != nil {
		return nil, diags, err
	}

	table := make(Table, len(reports))
	for _, r := range reports {
		switch r.Status {
		case StatusMissingSource:
			return nil, diags, &MissingSourceFieldError{Package: r.Name, Dir: r.Dir}
		case StatusAliased:
			table[string(r.Name)] = string(r.Target)
		}
	}
	return table, diags, nil
}

// Report scans the workspace roots and classifies every package directory
// without failing on packages that lack a source entry.
func (b *Builder) Report(ctx context.Context) ([]PackageReport, []workspace.Diagnostic, error) {
	entries, diags, err := b.scanner.ScanAll(ctx, b.roots)
	if err != nil {
		return nil, diags, err
	}

	reports := make([]PackageReport, 0, len(entries))
	owners := make(map[types.PackageName]int, len(entries))
	for _, e := range entries {
		r := b.classify(e)
		if r.Status == StatusUnnamed {
			if raw, ok := e.Manifest[manifest.FieldName].(string); ok && raw != "" {
				diags = append(diags, workspace.Diagnostic{
					Severity: workspace.SeverityWarning,
					Code:     workspace.CodeInvalidPackageName,
					Message:  fmt.Sprintf("package name %q has surrounding whitespace; the package gets no alias", raw),
					Path:     string(e.Dir),
				})
			}
		}
		if r.Status == StatusAliased {
			if prev, dup := owners[r.Name]; dup {
				reports[prev].Status = StatusShadowed
				diags = append(diags, workspace.Diagnostic{
					Severity: workspace.SeverityWarning,
					Code:     workspace.CodeDuplicateAlias,
					Message: fmt.Sprintf("package name %q is declared by %s and %s; using %s",
						r.Name, reports[prev].Dir, e.Dir, e.Dir),
					Path: string(e.Dir),
				})
			}
			owners[r.Name] = len(reports)
		}
		reports = append(reports, r)
	}
	return reports, diags, nil
}

func (b *Builder) classify(e workspace.PackageEntry) PackageReport {
	r := PackageReport{Dir: e.Dir, Status: StatusNoManifest}
	if e.Manifest == nil {
		return r
	}
	name, ok := e.Manifest.Name()
	if !ok {
		r.Status = StatusUnnamed
		return r
	}
	r.Name = name
	if _, skip := b.exclude[name]; skip {
		r.Status = StatusExcluded
		return r
	}
	src, ok := e.Manifest.Source()
	if !ok {
		r.Status = StatusMissingSource
		return r
	}
	r.Source = src
	r.Target = fspath.JoinStr(e.Dir, src)
	r.Status = StatusAliased
	return r
}

// Config merges the derived aliases under resolve.alias. Entries the user
// already declared win over derived ones. Other resolve keys are kept and
// the input is never modified.
func (b *Builder) Config(ctx context.Context, cfg hostconfig.Config) (hostconfig.Config, error) {
	table, diags, err := b.Derive(ctx)
	workspace.LogDiagnostics(ctx, b.logger, diags)
	if err != nil {
		return nil, err
	}
	b.logger.DebugContext(ctx, "derived aliases", slog.Any("packages", table.Names()))

	resolve := hostconfig.CopyMap(cfg.Section(hostconfig.KeyResolve))
	user, userDiags := userAliases(resolve[hostconfig.KeyAlias])
	workspace.LogDiagnostics(ctx, b.logger, userDiags)

	merged := hostconfig.Overlay(table.asMap(), user)
	resolve[hostconfig.KeyAlias] = merged

	out := cfg.Copy()
	out[hostconfig.KeyResolve] = resolve

	b.logger.InfoContext(ctx, "automatic aliases", slog.Any("aliases", merged))
	return out, nil
}

// Names returns the table's package names in sorted order.
func (t Table) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (t Table) asMap() map[string]any {
	out := make(map[string]any, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// userAliases reads a user alias declaration. The bundler accepts either a
// mapping or a list of {find, replacement} objects; lists are normalized to a
// mapping. Entries whose find is not a string cannot be expressed as mapping
// keys and are skipped with a warning.
func userAliases(v any) (map[string]any, []workspace.Diagnostic) {
	if v == nil {
		return nil, nil
	}
	if m := hostconfig.AsMap(v); m != nil {
		return m, nil
	}

	list, ok := v.([]any)
	if !ok {
		return nil, []workspace.Diagnostic{{
			Severity: workspace.SeverityWarning,
			Code:     workspace.CodeAliasEntrySkipped,
			Message:  fmt.Sprintf("ignoring resolve.alias of type %T; expected a mapping or a list", v),
		}}
	}

	out := make(map[string]any, len(list))
	var diags []workspace.Diagnostic
	for i, item := range list {
		entry := hostconfig.AsMap(item)
		find, ok := entry["find"].(string)
		if !ok {
			diags = append(diags, workspace.Diagnostic{
				Severity: workspace.SeverityWarning,
				Code:     workspace.CodeAliasEntrySkipped,
				Message:  fmt.Sprintf("ignoring resolve.alias[%d]: find must be a string", i),
			})
			continue
		}
		out[find] = entry["replacement"]
	}
	return out, diags
}
