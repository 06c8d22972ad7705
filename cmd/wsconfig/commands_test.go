// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/websublime/wsconfig/internal/config"
	"github.com/websublime/wsconfig/internal/testutil"
	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/types"
)

type staticProvider struct {
	cfg *config.Config
}

func (p staticProvider) Load(context.Context, config.LoadOptions) (*config.Config, error) {
	cfg := *p.cfg
	return &cfg, nil
}

type testCLI struct {
	fs     afero.Fs
	stdin  *bytes.Buffer
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestCLI(t *testing.T, files map[string]string) *testCLI {
	t.Helper()

	return &testCLI{fs: testutil.MemFS(t, files), stdin: &bytes.Buffer{}, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
}

func (c *testCLI) app() *App {
	return NewApp(Dependencies{
		Config: staticProvider{cfg: config.DefaultConfig()},
		FS:     c.fs,
		Stdin:  c.stdin,
		Stdout: c.stdout,
		Stderr: c.stderr,
	})
}

func (c *testCLI) run(args ...string) error {
	root := NewRootCommand(c.app())
	root.SetArgs(append([]string{"--workspace-root", "/ws"}, args...))
	return root.ExecuteContext(context.Background())
}

func (c *testCLI) decodeStdout(t *testing.T) hostconfig.Config {
	t.Helper()
	out, err := hostconfig.Decode(hostconfig.FormatJSON, c.stdout.Bytes())
	if err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, c.stdout.String())
	}
	return out
}

var workspaceFiles = map[string]string{
	"/ws/libs/ui/package.json":        `{"name": "@ws/ui", "source": "src/index.ts"}`,
	"/ws/packages/app/package.json":   `{"name": "@ws/app", "source": "src/main.ts", "config": {"build": {"outDir": "lib"}, "rollupOptions": {"input": "src/main.ts"}}}`,
	"/ws/packages/docs/README.md":     "docs",
	"/ws/vite.json":                   `{"resolve": {"alias": {"@ws/app": "./override.ts"}}}`,
	"/ws/packages/nosrc/package.json": `{"name": "@ws/nosrc"}`,
}

func TestAliasCommand(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t, workspaceFiles)
	if err := c.run("alias", "-i", "/ws/vite.json", "-x", "@ws/nosrc"); err != nil {
		t.Fatalf("alias: %v\n%s", err, c.stderr.String())
	}

	require.Equal(t, hostconfig.Config{
		"resolve": map[string]any{
			"alias": map[string]any{
				"@ws/ui":  "/ws/libs/ui/src/index.ts",
				"@ws/app": "./override.ts",
			},
		},
	}, c.decodeStdout(t))
}

func TestAliasCommandMissingSource(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t, workspaceFiles)
	err := c.run("alias")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("alias error = %v, want *ExitError", err)
	}
	if exitErr.Code != types.ExitManifest {
		t.Errorf("exit code = %d, want %d", exitErr.Code, types.ExitManifest)
	}
	if c.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing on failure", c.stdout.String())
	}
}

func TestBuildCommandFromStdin(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t, workspaceFiles)
	c.stdin.WriteString(`{"root": "packages/app", "build": {"outDir": "dist", "sourcemap": true}}`)
	if err := c.run("build", "-i", "-"); err != nil {
		t.Fatalf("build: %v\n%s", err, c.stderr.String())
	}

	require.Equal(t, hostconfig.Config{
		"root": "packages/app",
		"build": map[string]any{
			"outDir":    "lib",
			"sourcemap": true,
			"rollupOptions": map[string]any{
				"input": "/ws/packages/app/src/main.ts",
			},
		},
	}, c.decodeStdout(t))
}

func TestApplyCommandWritesOutputFile(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t, workspaceFiles)
	err := c.run("apply", "-x", "@ws/nosrc", "-p", "/ws/packages/app", "-o", "/ws/out/vite.yaml")
	if err != nil {
		t.Fatalf("apply: %v\n%s", err, c.stderr.String())
	}
	if c.stdout.Len() != 0 {
		t.Errorf("stdout = %q, want nothing when --out is set", c.stdout.String())
	}

	got, err := hostconfig.Load(c.fs, "/ws/out/vite.yaml")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	ui, _ := got.Lookup("resolve", "alias", "@ws/ui")
	require.Equal(t, "/ws/libs/ui/src/index.ts", ui)
	outDir, _ := got.Lookup("build", "outDir")
	require.Equal(t, "lib", outDir)
}

func TestScanCommand(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t, workspaceFiles)
	if err := c.run("scan"); err != nil {
		t.Fatalf("scan: %v", err)
	}

	out := c.stdout.String()
	for _, want := range []string{"NAME", "@ws/ui", "@ws/app", "aliased", "missing source", "no manifest", "packages/docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("scan output missing %q:\n%s", want, out)
		}
	}
}

func TestIssueCommand(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t, nil)
	if err := c.run("issue"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.Contains(c.stdout.String(), "missing-source-field") {
		t.Errorf("issue list = %q, want missing-source-field", c.stdout.String())
	}

	err := c.run("issue", "nope")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != types.ExitUsage {
		t.Errorf("issue nope error = %v, want usage exit error", err)
	}
}

func TestConfigInitCommand(t *testing.T) {
	t.Parallel()

	c := newTestCLI(t, nil)
	if err := c.run("--config", "/cfg/wsconfig.cue", "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	data, err := afero.ReadFile(c.fs, "/cfg/wsconfig.cue")
	if err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	if !strings.Contains(string(data), `roots: ["libs", "packages"]`) {
		t.Errorf("settings file = %q", data)
	}

	err = c.run("--config", "/cfg/wsconfig.cue", "config", "init")
	if !errors.Is(err, config.ErrConfigExists) {
		t.Errorf("second init error = %v, want ErrConfigExists", err)
	}
	if err := c.run("--config", "/cfg/wsconfig.cue", "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestWatchedFilesIncludeBuiltPackageManifest(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"/ws/packages/app/package.json": `{"name": "@ws/app", "source": "src/main.ts"}`,
		"/ws/vite.json":                 `{"root": "apps/site"}`,
		"/ws/bad.json":                  `{"root": 5}`,
	}
	tests := []struct {
		name    string
		input   string
		pkgRoot string
		want    []string
	}{
		{
			name:    "package flag outside roots",
			pkgRoot: "apps/web",
			want:    []string{"/ws/apps/web/package.json", "/ws/apps/web/package.yaml"},
		},
		{
			name:  "root from host config",
			input: "/ws/vite.json",
			want:  []string{"/ws/vite.json", "/ws/apps/site/package.json", "/ws/apps/site/package.yaml"},
		},
		{
			name:    "package flag overrides host root",
			input:   "/ws/vite.json",
			pkgRoot: "/elsewhere/lib",
			want:    []string{"/ws/vite.json", "/elsewhere/lib/package.json", "/elsewhere/lib/package.yaml"},
		},
		{
			name:  "unreadable host config uses workspace root",
			input: "/ws/missing.json",
			want:  []string{"/ws/missing.json", "/ws/package.json", "/ws/package.yaml"},
		},
		{
			name:  "non-string root watches only the host config",
			input: "/ws/bad.json",
			want:  []string{"/ws/bad.json"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCLI(t, files)
			app := c.app()
			s, err := app.newSession(context.Background(), &rootFlagValues{workspaceRoot: "/ws"})
			require.NoError(t, err)

			req := transformRequest{host: hostFlags{input: tt.input}, pkgRoot: tt.pkgRoot}
			require.Equal(t, tt.want, app.watchedFiles(context.Background(), s, req))
		})
	}
}

func TestInvalidPathFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
	}{
		{"blank package", []string{"build", "-p", "  "}},
		{"NUL in package", []string{"build", "-p", "apps/\x00web"}},
		{"blank workspace root", []string{"--workspace-root", " ", "alias"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestCLI(t, workspaceFiles)
			err := c.run(tt.args...)
			require.ErrorIs(t, err, types.ErrInvalidFilesystemPath)
			require.Equal(t, types.ExitUsage, exitCodeOf(err))
		})
	}
}

func TestFormatFlagCompletion(t *testing.T) {
	t.Parallel()

	names, directive := completeFormats(nil, nil, "")
	require.Equal(t, []string{"json", "yaml", "toml", "cue"}, names)
	require.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
}

func TestHostFlagsOutputFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		flags   hostFlags
		want    hostconfig.Format
		wantErr bool
	}{
		{name: "fallback", flags: hostFlags{}, want: hostconfig.FormatJSON},
		{name: "explicit format", flags: hostFlags{format: "toml", output: "x.json"}, want: hostconfig.FormatTOML},
		{name: "output extension", flags: hostFlags{output: "vite.config.yml"}, want: hostconfig.FormatYAML},
		{name: "unknown format", flags: hostFlags{format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.flags.outputFormat(hostconfig.FormatJSON)
			if tt.wantErr {
				if !errors.Is(err, hostconfig.ErrUnsupportedFormat) {
					t.Errorf("outputFormat() error = %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("outputFormat() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("outputFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadHostEmpty(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{FS: afero.NewMemMapFs(), Stdin: strings.NewReader(""), Stdout: io.Discard, Stderr: io.Discard})
	got, err := app.readHost("")
	if err != nil {
		t.Fatalf("readHost() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("readHost(\"\") = %v, want empty", got)
	}
}
