// SPDX-License-Identifier: MPL-2.0

// Package hostconfig models the bundler configuration object that flows
// through configuration hooks.
//
// A Config is a plain string-keyed mapping, mirroring the dynamic object a
// JavaScript bundler hands to its plugins. Helpers in this package read
// nested sections leniently (a missing or non-mapping value reads as nil)
// and build new values instead of mutating inputs. Codecs translate between
// a Config and its JSON, YAML, TOML or CUE file representation.
package hostconfig
