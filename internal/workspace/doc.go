// SPDX-License-Identifier: MPL-2.0

// Package workspace enumerates the packages of a multi-package workspace.
//
// A Scanner lists the immediate child directories of each workspace root and
// reads their manifests. Problems with individual packages never abort a
// scan; they are returned as Diagnostics alongside the entries so the caller
// decides how to render them. FindRoot locates the workspace root that
// contains a given package directory.
package workspace
