// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/manifest"
)

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"

	// DefaultDebounce is the default quiet period before a watch reload.
	DefaultDebounce = 300 * time.Millisecond
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel is the minimum level of log records the CLI prints.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Config holds wsconfig's settings.
	Config struct {
		// WorkspaceRoot anchors relative roots. Empty means "detect from the
		// working directory".
		WorkspaceRoot string `json:"workspace_root" mapstructure:"workspace_root"`
		// Roots are the directories whose immediate children are packages.
		Roots []string `json:"roots" mapstructure:"roots"`
		// Exclude lists package names that never receive an automatic alias.
		Exclude []string `json:"exclude" mapstructure:"exclude"`
		// Ignore lists doublestar patterns for directory names skipped while scanning.
		Ignore []string `json:"ignore" mapstructure:"ignore"`
		// ManifestFiles are tried in order in each package directory.
		ManifestFiles []string `json:"manifest_files" mapstructure:"manifest_files"`
		// OutputFormat encodes printed host configurations.
		OutputFormat hostconfig.Format `json:"output_format" mapstructure:"output_format"`
		// LogLevel is the minimum log level.
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
		// Watch configures the watch command.
		Watch WatchConfig `json:"watch" mapstructure:"watch"`
	}

	// WatchConfig configures the watch command.
	WatchConfig struct {
		// Debounce is the quiet period after the last change before a reload.
		Debounce time.Duration `json:"debounce" mapstructure:"debounce"`
		// ClearScreen clears the terminal before each reload's output.
		ClearScreen bool `json:"clear_screen" mapstructure:"clear_screen"`
	}

	// InvalidConfigError collects every field problem found by Validate.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Roots:         []string{"libs", "packages"},
		Exclude:       []string{},
		Ignore:        []string{},
		ManifestFiles: append([]string(nil), manifest.DefaultFileNames...),
		OutputFormat:  hostconfig.FormatJSON,
		LogLevel:      LogLevelInfo,
		Watch: WatchConfig{
			Debounce:    DefaultDebounce,
			ClearScreen: false,
		},
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Roots) == 0 {
		errs = append(errs, errors.New("roots: at least one workspace root is required"))
	}
	for i, r := range c.Roots {
		if strings.TrimSpace(r) == "" {
			errs = append(errs, fmt.Errorf("roots[%d]: must not be blank", i))
		}
	}
	if len(c.ManifestFiles) == 0 {
		errs = append(errs, errors.New("manifest_files: at least one file name is required"))
	}
	for i, pat := range c.Ignore {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("ignore[%d]: invalid pattern %q", i, pat))
		}
	}
	if err := c.OutputFormat.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("output_format: %w", err))
	}
	if err := c.LogLevel.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Watch.Debounce < 0 {
		errs = append(errs, fmt.Errorf("watch.debounce: must not be negative, got %s", c.Watch.Debounce))
	}

	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// Validate returns an error when l is not a known level.
func (l LogLevel) Validate() error {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return nil
	default:
		return &InvalidLogLevelError{Value: l}
	}
}

// Level maps l onto a slog level. Unknown values map to info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Error implements the error interface.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }
