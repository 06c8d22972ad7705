// SPDX-License-Identifier: MPL-2.0

package buildmerge

import (
	"errors"
	"fmt"
)

// ErrInvalidRoot is returned when the configuration's root is not a string.
var ErrInvalidRoot = errors.New("invalid root")

// InvalidRootError carries the offending root value.
type InvalidRootError struct {
	Value any
}

// Error implements the error interface.
func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("invalid root %v (%T): must be a path string", e.Value, e.Value)
}

// Unwrap returns ErrInvalidRoot for errors.Is() compatibility.
func (e *InvalidRootError) Unwrap() error { return ErrInvalidRoot }
