// SPDX-License-Identifier: MPL-2.0

package alias

import (
	"errors"
	"fmt"

	"github.com/websublime/wsconfig/pkg/types"
)

// ErrMissingSourceField is returned when an aliased package declares no
// usable "source" entry.
var ErrMissingSourceField = errors.New("package manifest has no source field")

// MissingSourceFieldError names the package whose manifest lacks a source.
type MissingSourceFieldError struct {
	Package types.PackageName
	Dir     types.FilesystemPath
}

// Error implements the error interface.
func (e *MissingSourceFieldError) Error() string {
	return fmt.Sprintf("package %q at %s: %v", e.Package, e.Dir, ErrMissingSourceField)
}

// Unwrap returns ErrMissingSourceField for errors.Is() compatibility.
func (e *MissingSourceFieldError) Unwrap() error { return ErrMissingSourceField }
