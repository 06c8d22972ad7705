// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath functions that
// accept and return types.FilesystemPath, so workspace code never mixes raw
// strings with resolved package paths.
package fspath

import (
	"fmt"
	"path/filepath"

	"github.com/websublime/wsconfig/pkg/types"
)

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments such as manifest file names or values read from a manifest.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Abs wraps filepath.Abs for FilesystemPath.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Resolve resolves target against base the way a bundler resolves entry
// paths: an absolute target is only cleaned, a relative one is joined onto
// base. An empty target resolves to base itself.
func Resolve(base types.FilesystemPath, target string) types.FilesystemPath {
	if filepath.IsAbs(target) {
		return types.FilesystemPath(filepath.Clean(target))
	}
	return JoinStr(base, target)
}
