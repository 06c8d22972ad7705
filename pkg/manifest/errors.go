// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/websublime/wsconfig/pkg/types"
)

var (
	// ErrManifestNotFound is the sentinel error wrapped by NotFoundError.
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrManifestParse is the sentinel error wrapped by ParseError.
	ErrManifestParse = errors.New("manifest parse error")
)

type (
	// NotFoundError is returned when no manifest file could be read in a
	// package directory.
	NotFoundError struct {
		Dir   types.FilesystemPath
		Tried []string
		// Cause is set when a manifest exists but could not be read.
		Cause error
	}

	// ParseError is returned when a manifest file exists but does not hold a
	// structured mapping.
	ParseError struct {
		Path  types.FilesystemPath
		Cause error
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("no manifest (%s) in %s", strings.Join(e.Tried, ", "), e.Dir)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns ErrManifestNotFound together with the read failure, if any.
func (e *NotFoundError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrManifestNotFound}
	}
	return []error{ErrManifestNotFound, e.Cause}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing manifest %s: %v", e.Path, e.Cause)
}

// Unwrap returns ErrManifestParse together with the decoder error.
func (e *ParseError) Unwrap() []error {
	return []error{ErrManifestParse, e.Cause}
}
