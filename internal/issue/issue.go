// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Id identifies a troubleshooting guide. The zero value means "no guide".
type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	MissingSourceFieldId
	DuplicateAliasNameId
	InvalidRootId
	WorkspaceRootMissingId
	ConfigLoadFailedId
	UnsupportedFormatId
)

type (
	// MarkdownMsg is Markdown guide text.
	MarkdownMsg string

	// HttpLink is an external reference.
	HttpLink string

	// Issue is a named troubleshooting guide.
	Issue struct {
		id       Id
		name     string
		mdMsg    MarkdownMsg
		extLinks []HttpLink
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id { return i.id }

// Name returns the stable kebab-case name used by "wsconfig issue <name>".
func (i *Issue) Name() string { return i.name }

// Markdown returns the guide text with a "See also" list appended when the
// guide has external references.
func (i *Issue) Markdown() string {
	if len(i.extLinks) == 0 {
		return string(i.mdMsg)
	}
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	sb.WriteString("\n\n## See also\n")
	for _, link := range i.extLinks {
		sb.WriteString("- <")
		sb.WriteString(string(link))
		sb.WriteString(">\n")
	}
	return sb.String()
}

// Render renders the guide for a terminal. stylePath is a glamour style
// name ("dark", "light", "notty", "auto") or a path to a JSON style file.
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	viteAliasDocs = HttpLink("https://vite.dev/config/shared-options.html#resolve-alias")
	viteBuildDocs = HttpLink("https://vite.dev/config/build-options.html#build-rollupoptions")

	manifestNotFoundIssue = &Issue{
		id:   ManifestNotFoundId,
		name: "manifest-not-found",
		mdMsg: `
# No package manifest found

The build merge reads the manifest of the package being built, but none of the
configured manifest files exist in the package root.

## Things you can try
- Check the ` + "`root`" + ` value of your bundler configuration; relative roots are
  resolved against the workspace root.
- Add a ` + "`package.json`" + ` (or ` + "`package.yaml`" + `) to the package directory.
- If your manifests use another file name, list it under ` + "`manifest_files`" + ` in
  ` + "`wsconfig.cue`" + `.`,
		extLinks: []HttpLink{viteBuildDocs},
	}

	manifestParseErrorIssue = &Issue{
		id:   ManifestParseErrorId,
		name: "manifest-parse-error",
		mdMsg: `
# Package manifest could not be parsed

The manifest exists but is not a valid JSON or YAML mapping.

## Things you can try
- Validate the file:
~~~
$ wsconfig scan --verbose
~~~
- Look for trailing commas or unquoted keys in JSON manifests.
- Make sure the top level of the document is an object, not a list.`,
	}

	missingSourceFieldIssue = &Issue{
		id:   MissingSourceFieldId,
		name: "missing-source-field",
		mdMsg: `
# Package has no source entry

Every named package under a workspace root is aliased to its ` + "`source`" + ` file.
This package declares a ` + "`name`" + ` but no ` + "`source`" + `.

## Things you can try
- Add the entry file to the manifest:
~~~json
{ "name": "@scope/ui", "source": "src/index.ts" }
~~~
- Or exclude the package from aliasing:
~~~
$ wsconfig alias --exclude @scope/ui
~~~`,
		extLinks: []HttpLink{viteAliasDocs},
	}

	duplicateAliasNameIssue = &Issue{
		id:   DuplicateAliasNameId,
		name: "duplicate-alias-name",
		mdMsg: `
# Two packages share a name

More than one package under the workspace roots declares the same ` + "`name`" + `.
The package scanned last wins the alias.

## Things you can try
- Rename one of the packages.
- Exclude the unwanted one with ` + "`--exclude`" + ` or the ` + "`exclude`" + ` config key.
- Narrow the scanned roots with ` + "`--root`" + `.`,
		extLinks: []HttpLink{viteAliasDocs},
	}

	invalidRootIssue = &Issue{
		id:   InvalidRootId,
		name: "invalid-root",
		mdMsg: `
# Invalid root in bundler configuration

The ` + "`root`" + ` option must be a path string. Leave it out to build from the
workspace root.`,
		extLinks: []HttpLink{"https://vite.dev/config/shared-options.html#root"},
	}

	workspaceRootMissingIssue = &Issue{
		id:   WorkspaceRootMissingId,
		name: "workspace-root-missing",
		mdMsg: `
# Workspace root does not exist

A configured workspace root is not a directory, so it contributes no aliases.

## Things you can try
- Check the ` + "`roots`" + ` config key or the ` + "`--root`" + ` flags.
- Relative roots are resolved against ` + "`workspace_root`" + `, or the detected
  workspace root when that is unset:
~~~
$ wsconfig config show
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id:   ConfigLoadFailedId,
		name: "config-load-failed",
		mdMsg: `
# Failed to load configuration

` + "`wsconfig.cue`" + ` could not be read or does not match the configuration schema.

## Things you can try
- Print the effective configuration and where it came from:
~~~
$ wsconfig config path
$ wsconfig config show
~~~
- Regenerate a default file:
~~~
$ wsconfig config init --force
~~~
- Environment variables prefixed with ` + "`WSCONFIG_`" + ` override file values.`,
	}

	unsupportedFormatIssue = &Issue{
		id:   UnsupportedFormatId,
		name: "unsupported-format",
		mdMsg: `
# Unsupported configuration format

Host configurations are read and written as ` + "`json`" + `, ` + "`yaml`" + `, ` + "`toml`" + ` or
` + "`cue`" + `, chosen by file extension or ` + "`--format`" + `.`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():     manifestNotFoundIssue,
		manifestParseErrorIssue.Id():   manifestParseErrorIssue,
		missingSourceFieldIssue.Id():   missingSourceFieldIssue,
		duplicateAliasNameIssue.Id():   duplicateAliasNameIssue,
		invalidRootIssue.Id():          invalidRootIssue,
		workspaceRootMissingIssue.Id(): workspaceRootMissingIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		unsupportedFormatIssue.Id():    unsupportedFormatIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, iss := range issues {
		out = append(out, iss)
	}
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}

// Lookup returns the issue with the given name.
func Lookup(name string) (*Issue, bool) {
	for _, iss := range issues {
		if iss.name == name {
			return iss, true
		}
	}
	return nil, false
}

// Names returns every issue name ordered by Id.
func Names() []string {
	vals := Values()
	names := make([]string, len(vals))
	for i, iss := range vals {
		names[i] = iss.name
	}
	return names
}
