// SPDX-License-Identifier: MPL-2.0

// Package buildmerge merges a package's own build configuration fragment,
// declared under "config" in its manifest, into the host bundler
// configuration. Entry points under rollupOptions.input are resolved against
// the package directory.
package buildmerge
