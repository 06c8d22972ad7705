// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"

	"github.com/websublime/wsconfig/pkg/fspath"
	"github.com/websublime/wsconfig/pkg/manifest"
	"github.com/websublime/wsconfig/pkg/types"
)

// RootMarkers are files whose presence marks a workspace root directory.
// A package.json declaring "workspaces" is also accepted.
var RootMarkers = []string{".sublime.json", "pnpm-workspace.yaml"}

// FindRoot walks up from start and returns the first directory that looks
// like a workspace root. When no ancestor qualifies, start itself is
// returned with found=false.
func FindRoot(fsys afero.Fs, start types.FilesystemPath) (root types.FilesystemPath, found bool, err error) {
	abs, err := fspath.Abs(start)
	if err != nil {
		return "", false, err
	}

	dir := abs
	for {
		ok, err := isRoot(fsys, dir)
		if err != nil {
			return "", false, err
		}
		if ok {
			return dir, true, nil
		}
		parent := fspath.Dir(dir)
		if parent == dir {
			return abs, false, nil
		}
		dir = parent
	}
}

func isRoot(fsys afero.Fs, dir types.FilesystemPath) (bool, error) {
	for _, marker := range RootMarkers {
		ok, err := afero.Exists(fsys, string(fspath.JoinStr(dir, marker)))
		if err != nil {
			return false, fmt.Errorf("checking %s: %w", marker, err)
		}
		if ok {
			return true, nil
		}
	}

	m, err := manifest.NewReader(fsys, "package.json").Read(dir)
	switch {
	case err == nil:
		return m.HasWorkspaces(), nil
	case errors.Is(err, manifest.ErrManifestNotFound), errors.Is(err, manifest.ErrManifestParse):
		return false, nil
	case errors.Is(err, fs.ErrPermission):
		return false, nil
	default:
		return false, err
	}
}
