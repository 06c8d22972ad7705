// SPDX-License-Identifier: MPL-2.0

// Package alias derives module resolution aliases from the packages of a
// workspace and merges them into a host bundler configuration.
//
// Each package directory under a workspace root contributes one alias: its
// manifest "name" maps to the absolute path of its "source" entry. User
// aliases already present in the configuration always take precedence.
package alias
