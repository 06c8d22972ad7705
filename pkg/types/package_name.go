// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPackageName is the sentinel error wrapped by InvalidPackageNameError.
var ErrInvalidPackageName = errors.New("invalid package name")

type (
	// PackageName is the identifier a workspace package declares in its
	// manifest "name" field (e.g. "@scope/ui" or "utils"). It is also the key
	// of an alias entry.
	PackageName string

	// InvalidPackageNameError is returned when a PackageName is empty,
	// whitespace-only, or carries surrounding whitespace.
	InvalidPackageNameError struct {
		Value PackageName
	}
)

// String returns the string representation of the PackageName.
func (n PackageName) String() string { return string(n) }

// Validate returns an error if the name cannot be used as an alias key.
func (n PackageName) Validate() error {
	s := string(n)
	if strings.TrimSpace(s) == "" || strings.TrimSpace(s) != s {
		return &InvalidPackageNameError{Value: n}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidPackageNameError) Error() string {
	return fmt.Sprintf("invalid package name %q: must be non-empty without surrounding whitespace", e.Value)
}

// Unwrap returns ErrInvalidPackageName for errors.Is() compatibility.
func (e *InvalidPackageNameError) Unwrap() error { return ErrInvalidPackageName }
