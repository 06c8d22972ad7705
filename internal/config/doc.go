// SPDX-License-Identifier: MPL-2.0

// Package config loads wsconfig's own settings using Viper with CUE as the
// file format.
//
// Settings come from wsconfig.cue in the user configuration directory
// (XDG on Linux, ~/Library/Application Support on macOS, %APPDATA% on
// Windows) or, when that file is absent, from wsconfig.cue in the working
// directory. Files are validated against the embedded CUE schema
// (config_schema.cue). WSCONFIG_-prefixed environment variables override
// file values.
package config
