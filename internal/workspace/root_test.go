// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/websublime/wsconfig/pkg/types"
)

func TestFindRoot(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		files     map[string]string
		start     types.FilesystemPath
		want      types.FilesystemPath
		wantFound bool
	}{
		{
			name:      "sublime config marker",
			files:     map[string]string{"/ws/.sublime.json": "{}", "/ws/packages/ui/package.json": `{"name":"ui"}`},
			start:     "/ws/packages/ui",
			want:      "/ws",
			wantFound: true,
		},
		{
			name:      "pnpm workspace marker",
			files:     map[string]string{"/repo/pnpm-workspace.yaml": "packages: ['libs/*']", "/repo/libs/a/package.json": `{}`},
			start:     "/repo/libs/a",
			want:      "/repo",
			wantFound: true,
		},
		{
			name: "package.json with workspaces",
			files: map[string]string{
				"/mono/package.json":          `{"private": true, "workspaces": ["apps/*"]}`,
				"/mono/apps/web/package.json": `{"name": "web"}`,
			},
			start:     "/mono/apps/web",
			want:      "/mono",
			wantFound: true,
		},
		{
			name:      "no marker falls back to start",
			files:     map[string]string{"/solo/app/package.json": `{"name": "app"}`},
			start:     "/solo/app",
			want:      "/solo/app",
			wantFound: false,
		},
		{
			name:      "broken root manifest is skipped",
			files:     map[string]string{"/x/package.json": `{`, "/x/y/z.txt": ""},
			start:     "/x/y",
			want:      "/x/y",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fsys := afero.NewMemMapFs()
			writeFiles(t, fsys, tt.files)

			got, found, err := FindRoot(fsys, tt.start)
			if err != nil {
				t.Fatalf("FindRoot() error: %v", err)
			}
			if got != tt.want || found != tt.wantFound {
				t.Errorf("FindRoot(%q) = %q, %v; want %q, %v", tt.start, got, found, tt.want, tt.wantFound)
			}
		})
	}
}
