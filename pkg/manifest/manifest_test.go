// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"testing"

	"github.com/websublime/wsconfig/pkg/types"
)

func TestManifestName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		m      Manifest
		want   types.PackageName
		wantOK bool
	}{
		{"present", Manifest{"name": "@acme/ui"}, "@acme/ui", true},
		{"missing", Manifest{"version": "1.0.0"}, "", false},
		{"empty", Manifest{"name": ""}, "", false},
		{"not a string", Manifest{"name": 42.0}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tt.m.Name()
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Name() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestManifestSource(t *testing.T) {
	t.Parallel()

	if s, ok := (Manifest{"source": "./src/index.ts"}).Source(); !ok || s != "./src/index.ts" {
		t.Errorf("Source() = %q, %v", s, ok)
	}
	if _, ok := (Manifest{"source": ""}).Source(); ok {
		t.Error("empty source should not be reported")
	}
	if _, ok := (Manifest{"source": []any{"a"}}).Source(); ok {
		t.Error("non-string source should not be reported")
	}
}

func TestManifestFragment(t *testing.T) {
	t.Parallel()

	m := Manifest{
		"config": map[string]any{
			"rollupOptions": map[string]any{"input": map[string]any{"main": "./src/index.ts"}},
			"build":         map[string]any{"outDir": "dist"},
		},
	}
	frag := m.Fragment()
	if frag.IsEmpty() {
		t.Fatal("fragment should not be empty")
	}
	if frag.Build["outDir"] != "dist" {
		t.Errorf("Build = %v", frag.Build)
	}

	// The fragment's top-level maps are copies; writing them leaves the manifest alone.
	frag.RollupOptions["input"] = "replaced"
	inner := m["config"].(map[string]any)["rollupOptions"].(map[string]any)
	if _, isMap := inner["input"].(map[string]any); !isMap {
		t.Error("writing the fragment mutated the manifest")
	}
}

func TestManifestFragmentLenient(t *testing.T) {
	t.Parallel()

	tests := map[string]Manifest{
		"no config":              {},
		"config is a string":     {"config": "nope"},
		"sections are not maps":  {"config": map[string]any{"rollupOptions": 1.0, "build": []any{}}},
		"sections are empty map": {"config": map[string]any{"rollupOptions": map[string]any{}}},
	}
	for name, m := range tests {
		frag := m.Fragment()
		if !frag.IsEmpty() {
			t.Errorf("%s: fragment = %+v, want empty", name, frag)
		}
		if frag.Build == nil || frag.RollupOptions == nil {
			t.Errorf("%s: fragment maps must be non-nil", name)
		}
	}
}

func TestManifestHasWorkspaces(t *testing.T) {
	t.Parallel()

	if !(Manifest{"workspaces": []any{"packages/*"}}).HasWorkspaces() {
		t.Error("HasWorkspaces() = false, want true")
	}
	if (Manifest{"name": "x"}).HasWorkspaces() {
		t.Error("HasWorkspaces() = true, want false")
	}
}
