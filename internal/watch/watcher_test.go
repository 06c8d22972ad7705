// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/websublime/wsconfig/internal/testutil"
)

var quietLogger = testutil.DiscardLogger

func mkdirs(t *testing.T, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// startWatcher runs w in the background and returns a stop function that
// cancels it and reports Run's error.
func startWatcher(t *testing.T, w *Watcher) func() error {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	// Give fsnotify a moment before the test starts writing.
	time.Sleep(50 * time.Millisecond)
	return func() error {
		cancel()
		select {
		case err := <-errCh:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after cancellation")
			return nil
		}
	}
}

func TestManifestChangesAreDebounced(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "a"), filepath.Join(root, "b"))

	var (
		mu        sync.Mutex
		calls     int
		collected []string
	)
	done := make(chan struct{}, 1)

	w, err := New(Config{
		Roots:    []string{root},
		Patterns: ManifestPatterns([]string{"package.json"}),
		Debounce: 100 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			mu.Lock()
			defer mu.Unlock()
			calls++
			collected = append(collected, changed...)
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(root, "a", "package.json"), `{"name":"a"}`)
	time.Sleep(10 * time.Millisecond)
	writeFile(t, filepath.Join(root, "b", "package.json"), `{"name":"b"}`)
	writeFile(t, filepath.Join(root, "a", "index.ts"), "export {}")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}
	time.Sleep(250 * time.Millisecond)

	if err := stop(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if calls != 1 {
		t.Errorf("OnChange called %d times, want 1", calls)
	}
	for _, want := range []string{filepath.Join(root, "a", "package.json"), filepath.Join(root, "b", "package.json")} {
		if !slices.Contains(collected, want) {
			t.Errorf("changed paths %v missing %s", collected, want)
		}
	}
	for _, p := range collected {
		if strings.HasSuffix(p, "index.ts") {
			t.Errorf("non-manifest change reported: %s", p)
		}
	}
}

func TestWatchedFileTriggers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	hostCfg := filepath.Join(dir, "vite.config.json")
	writeFile(t, hostCfg, "{}")

	got := make(chan []string, 1)
	w, err := New(Config{
		Files:    []string{hostCfg},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			got <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop() //nolint:errcheck

	writeFile(t, filepath.Join(dir, "unrelated.txt"), "x")
	writeFile(t, hostCfg, `{"root": "pkg"}`)

	select {
	case changed := <-got:
		if !slices.Equal(changed, []string{hostCfg}) {
			t.Errorf("changed = %v, want only %s", changed, hostCfg)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}
}

func TestFileOutsideRootsTriggers(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	root := filepath.Join(base, "packages")
	appDir := filepath.Join(base, "apps", "web")
	mkdirs(t, filepath.Join(root, "a"), appDir)
	appManifest := filepath.Join(appDir, "package.json")
	writeFile(t, appManifest, `{"name": "web"}`)

	got := make(chan []string, 1)
	w, err := New(Config{
		Roots:    []string{root},
		Files:    []string{appManifest},
		Patterns: ManifestPatterns([]string{"package.json"}),
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			got <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop() //nolint:errcheck

	writeFile(t, appManifest, `{"name": "web", "build": {"outDir": "dist"}}`)

	select {
	case changed := <-got:
		if !slices.Equal(changed, []string{appManifest}) {
			t.Errorf("changed = %v, want only %s", changed, appManifest)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called for a manifest outside the roots")
	}
}

func TestMissingFileDirectoryIsSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{
		Roots:  []string{dir},
		Files:  []string{filepath.Join(dir, "absent", "package.json")},
		Logger: quietLogger(),
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := w.fsw.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	tests := []struct {
		name         string
		cfg          Config
		wantDebounce time.Duration
		wantStdout   io.Writer
	}{
		{"zero", Config{}, defaultDebounce, os.Stdout},
		{"explicit", Config{Debounce: time.Second, Stdout: &buf, Logger: quietLogger()}, time.Second, &buf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := tt.cfg
			cfg.Roots = []string{t.TempDir()}
			w, err := New(cfg)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			defer w.fsw.Close() //nolint:errcheck
			if w.debounce != tt.wantDebounce {
				t.Errorf("debounce = %s, want %s", w.debounce, tt.wantDebounce)
			}
			if w.stdout != tt.wantStdout {
				t.Errorf("stdout = %v, want %v", w.stdout, tt.wantStdout)
			}
			if w.logger == nil {
				t.Error("logger should default to slog.Default()")
			}
		})
	}
}

func TestNewPackageDirectoryIsWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	got := make(chan []string, 4)
	w, err := New(Config{
		Roots:    []string{root},
		Patterns: ManifestPatterns([]string{"package.json"}),
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(_ context.Context, changed []string) error {
			got <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	defer stop() //nolint:errcheck

	pkg := filepath.Join(root, "fresh")
	mkdirs(t, pkg)
	time.Sleep(100 * time.Millisecond)
	manifest := filepath.Join(pkg, "package.json")
	writeFile(t, manifest, `{"name":"fresh"}`)

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-got:
			if slices.Contains(changed, manifest) {
				return
			}
		case <-deadline:
			t.Fatal("manifest in new package directory was not reported")
		}
	}
}

func TestIgnoredPathsDoNotTrigger(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "node_modules"), filepath.Join(root, "scratch"))

	called := make(chan struct{}, 1)
	w, err := New(Config{
		Roots:    []string{root},
		Ignore:   []string{"scratch/**"},
		Debounce: 50 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(context.Context, []string) error {
			called <- struct{}{}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(root, "scratch", "package.json"), "{}")

	select {
	case <-called:
		t.Error("OnChange fired for an ignored path")
	case <-time.After(300 * time.Millisecond):
	}
	if err := stop(); err != nil {
		t.Errorf("Run() error: %v", err)
	}
}

func TestSkipIfBusy(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "p"))

	var (
		mu      sync.Mutex
		active  int
		overlap bool
		calls   int
	)
	release := make(chan struct{})
	first := make(chan struct{}, 1)

	w, err := New(Config{
		Roots:    []string{root},
		Debounce: 30 * time.Millisecond,
		Logger:   quietLogger(),
		OnChange: func(context.Context, []string) error {
			mu.Lock()
			active++
			if active > 1 {
				overlap = true
			}
			calls++
			n := calls
			mu.Unlock()

			if n == 1 {
				first <- struct{}{}
				<-release
			}

			mu.Lock()
			active--
			mu.Unlock()
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)

	writeFile(t, filepath.Join(root, "p", "package.json"), "1")
	select {
	case <-first:
	case <-time.After(5 * time.Second):
		t.Fatal("first OnChange not called")
	}
	writeFile(t, filepath.Join(root, "p", "package.json"), "2")
	time.Sleep(150 * time.Millisecond)
	close(release)
	time.Sleep(200 * time.Millisecond)

	if err := stop(); err != nil {
		t.Errorf("Run() error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Error("OnChange ran concurrently")
	}
	if calls < 2 {
		t.Errorf("pending change was dropped: %d calls", calls)
	}
}

func TestClearScreen(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	mkdirs(t, filepath.Join(root, "p"))

	var out bytes.Buffer
	var mu sync.Mutex
	done := make(chan struct{}, 1)
	w, err := New(Config{
		Roots:       []string{root},
		Debounce:    30 * time.Millisecond,
		ClearScreen: true,
		Stdout:      &lockedWriter{w: &out, mu: &mu},
		Logger:      quietLogger(),
		OnChange: func(context.Context, []string) error {
			select {
			case done <- struct{}{}:
			default:
			}
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	writeFile(t, filepath.Join(root, "p", "package.json"), "{}")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange not called")
	}
	if err := stop(); err != nil {
		t.Errorf("Run() error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(out.String(), "\033[2J\033[H") {
		t.Errorf("stdout = %q, want clear-screen sequence", out.String())
	}
}

func TestRunTwice(t *testing.T) {
	t.Parallel()

	w, err := New(Config{Roots: []string{t.TempDir()}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	stop := startWatcher(t, w)
	if err := w.Run(context.Background()); err == nil {
		t.Error("second Run() should fail")
	}
	if err := stop(); err != nil {
		t.Errorf("Run() error: %v", err)
	}
}

func TestMissingRootIsSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w, err := New(Config{Roots: []string{filepath.Join(dir, "absent"), dir}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if err := w.fsw.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr int
	}{
		{"valid", Config{Roots: []string{"/ws"}, Patterns: []string{"*/package.json"}}, 0},
		{"nothing to watch", Config{}, 1},
		{"bad patterns", Config{Files: []string{"f"}, Patterns: []string{"[x"}, Ignore: []string{"{a"}}, 2},
		{"negative debounce", Config{Roots: []string{"/ws"}, Debounce: -time.Second}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr == 0 {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			var ice *InvalidConfigError
			if !errors.As(err, &ice) || len(ice.FieldErrors) != tt.wantErr {
				t.Errorf("Validate() = %v, want %d field errors", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Error("error should wrap ErrInvalidConfig")
			}
		})
	}
}

func TestManifestPatterns(t *testing.T) {
	t.Parallel()

	got := ManifestPatterns([]string{"package.json", "package.yaml"})
	if !slices.Equal(got, []string{"*/package.json", "*/package.yaml"}) {
		t.Errorf("ManifestPatterns() = %v", got)
	}
}

func TestDefaultIgnoresIsCopy(t *testing.T) {
	t.Parallel()

	d := DefaultIgnores()
	d[0] = "mutated"
	if DefaultIgnores()[0] == "mutated" {
		t.Error("DefaultIgnores() should return a copy")
	}
}

type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
