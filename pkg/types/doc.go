// SPDX-License-Identifier: MPL-2.0

// Package types holds small validated value types shared across wsconfig:
// filesystem paths, package names and process exit codes.
package types
