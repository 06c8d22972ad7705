// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/types"
)

const (
	// FieldName is the package identifier.
	FieldName = "name"
	// FieldSource is the package's primary source file, relative to its directory.
	FieldSource = "source"
	// FieldConfig holds the package-local build configuration fragment.
	FieldConfig = "config"
	// FieldWorkspaces marks a workspace root manifest (npm/yarn style).
	FieldWorkspaces = "workspaces"
)

type (
	// Manifest is a parsed package manifest. Only a few fields are
	// interpreted; the rest are carried as-is.
	Manifest map[string]any

	// Fragment is the build configuration a package declares under
	// "config". Both maps are non-nil.
	Fragment struct {
		// RollupOptions holds config.rollupOptions, including "input".
		RollupOptions map[string]any
		// Build holds config.build.
		Build map[string]any
	}
)

// Name returns the declared package name. The boolean is false when the
// field is missing, not a string, or not a usable name.
func (m Manifest) Name() (types.PackageName, bool) {
	s, ok := m[FieldName].(string)
	if !ok {
		return "", false
	}
	name := types.PackageName(s)
	if name.Validate() != nil {
		return "", false
	}
	return name, true
}

// Source returns the declared source entry path. The boolean is false when
// the field is missing, empty, or not a string.
func (m Manifest) Source() (string, bool) {
	s, ok := m[FieldSource].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// HasWorkspaces reports whether the manifest declares a "workspaces" field.
func (m Manifest) HasWorkspaces() bool {
	_, ok := m[FieldWorkspaces]
	return ok
}

// Fragment extracts the build configuration fragment. Missing or
// non-mapping values read as empty.
func (m Manifest) Fragment() Fragment {
	cfg := hostconfig.AsMap(m[FieldConfig])
	return Fragment{
		RollupOptions: hostconfig.CopyMap(hostconfig.AsMap(cfg[hostconfig.KeyRollupOptions])),
		Build:         hostconfig.CopyMap(hostconfig.AsMap(cfg[hostconfig.KeyBuild])),
	}
}

// IsEmpty reports whether the fragment contributes nothing to a merge.
func (f Fragment) IsEmpty() bool {
	return len(f.RollupOptions) == 0 && len(f.Build) == 0
}
