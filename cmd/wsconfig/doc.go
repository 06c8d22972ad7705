// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the wsconfig CLI commands.
//
// The CLI runs the workspace configuration transforms outside a bundler:
// it reads a host configuration file, applies the alias and build merge
// hooks in plugin order, and prints or writes the result.
package cmd
