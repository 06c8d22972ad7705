// SPDX-License-Identifier: MPL-2.0

// Package manifest reads per-package manifests (package.json or package.yaml)
// and exposes the handful of fields wsconfig cares about: the package name,
// its source entry file, and the build configuration fragment under "config".
//
// Manifests are read through a Reader so callers can substitute an
// in-memory filesystem. Nothing is cached; every Read hits the filesystem.
package manifest
