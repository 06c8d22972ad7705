// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/websublime/wsconfig/internal/testutil"
)

var writeFiles = testutil.WriteFiles

// newTestScanner creates a Scanner over an in-memory filesystem anchored at /ws.
func newTestScanner(t *testing.T, fsys afero.Fs, opts ...func(*Options)) *Scanner {
	t.Helper()
	o := Options{FS: fsys, BaseDir: "/ws"}
	for _, fn := range opts {
		fn(&o)
	}
	s, err := NewScanner(o)
	if err != nil {
		t.Fatalf("NewScanner() error: %v", err)
	}
	return s
}
