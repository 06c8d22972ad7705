// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"context"
	"log/slog"
)

const (
	// SeverityWarning indicates a recoverable problem; the scan continued.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal error the user should fix.
	SeverityError Severity = "error"

	// CodeRootMissing reports a workspace root that does not exist.
	CodeRootMissing = "workspace_root_missing"
	// CodeManifestSkipped reports a package whose manifest could not be read or parsed.
	CodeManifestSkipped = "manifest_skipped"
	// CodeDuplicateAlias reports two packages declaring the same name.
	CodeDuplicateAlias = "duplicate_alias_name"
	// CodeAliasEntrySkipped reports a user alias entry that could not be used.
	CodeAliasEntrySkipped = "alias_entry_skipped"
	// CodeInvalidPackageName reports a manifest name that cannot be an alias key.
	CodeInvalidPackageName = "invalid_package_name"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a structured, non-fatal problem found while scanning or
	// building aliases. Diagnostics are returned to callers rather than
	// printed.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g. "manifest_skipped").
		Code string
		// Message is the human-readable description.
		Message string
		// Path is the file or directory involved (optional).
		Path string
		// Cause is the underlying error (optional).
		Cause error
	}
)

// Level maps the severity onto a slog level.
func (s Severity) Level() slog.Level {
	if s == SeverityError {
		return slog.LevelError
	}
	return slog.LevelWarn
}

// LogDiagnostics writes each diagnostic to logger at its severity level.
func LogDiagnostics(ctx context.Context, logger *slog.Logger, diags []Diagnostic) {
	for _, d := range diags {
		attrs := []slog.Attr{slog.String("code", d.Code)}
		if d.Path != "" {
			attrs = append(attrs, slog.String("path", d.Path))
		}
		if d.Cause != nil {
			attrs = append(attrs, slog.Any("error", d.Cause))
		}
		logger.LogAttrs(ctx, d.Severity.Level(), d.Message, attrs...)
	}
}
