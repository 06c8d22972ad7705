// SPDX-License-Identifier: MPL-2.0

// Package cli contains CLI integration tests using testscript.
//
// The wsconfig command runs in-process through testscript.Main, so scripts
// exercise the real command tree, exit codes and output streams.
package cli

import (
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	cmd "github.com/websublime/wsconfig/cmd/wsconfig"
	"github.com/websublime/wsconfig/internal/config"
)

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"wsconfig": cmd.Execute,
	})
}

// TestCLI runs all testscript tests in the testdata directory.
func TestCLI(t *testing.T) {
	t.Parallel()

	testscript.Run(t, testscript.Params{
		Dir: "testdata",
		Setup: func(env *testscript.Env) error {
			// Keep the user's settings out of the scripts.
			env.Setenv(config.ConfigDirEnv, filepath.Join(env.WorkDir, ".cfg"))
			env.Setenv("NO_COLOR", "1")
			return nil
		},
		// Continue running all tests even if one fails
		ContinueOnError: true,
	})
}
