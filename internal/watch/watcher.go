// SPDX-License-Identifier: MPL-2.0

// Package watch re-runs a callback when workspace manifests or configuration
// files change.
//
// Workspace roots are watched together with their immediate package
// directories, which is where manifests live. Individual files such as a host
// configuration are watched by name. Events arriving within the debounce
// window are coalesced so the callback fires once with every changed path.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dario.cat/mergo"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid watch config")

// defaultIgnores are never reported, whatever the configured patterns.
var defaultIgnores = []string{
	".git",
	".git/**",
	"node_modules",
	"node_modules/**",
	"*/node_modules/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.DS_Store",
}

type (
	// Config holds the parameters for a Watcher.
	Config struct {
		// Roots are workspace roots. Each root and its immediate child
		// directories are watched.
		Roots []string
		// Files are watched individually, e.g. the host configuration.
		Files []string
		// Patterns select which paths under a root trigger the callback,
		// matched against the path relative to that root. Empty matches all.
		Patterns []string
		// Ignore adds to the built-in ignore patterns.
		Ignore []string
		// Debounce is the quiet period after the last event. Zero falls back
		// to the default.
		Debounce time.Duration
		// ClearScreen writes an ANSI clear sequence to Stdout before each
		// callback.
		ClearScreen bool
		// OnChange receives the sorted absolute paths changed in the window.
		OnChange func(ctx context.Context, changed []string) error
		// Stdout receives the clear-screen sequence. Defaults to os.Stdout.
		Stdout io.Writer
		// Logger reports skipped runs and callback failures. Defaults to slog.Default().
		Logger *slog.Logger
	}

	// InvalidConfigError lists every problem found by Config.Validate.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Watcher dispatches debounced change notifications. Run must be called
	// exactly once.
	Watcher struct {
		cfg      Config
		fsw      *fsnotify.Watcher
		roots    []string
		files    map[string]struct{}
		ignores  []string
		debounce time.Duration
		stdout   io.Writer
		logger   *slog.Logger
		started  atomic.Bool
	}
)

// ManifestPatterns returns watch patterns selecting the given manifest file
// names inside package directories directly under a root.
func ManifestPatterns(fileNames []string) []string {
	out := make([]string, len(fileNames))
	for i, name := range fileNames {
		out[i] = "*/" + name
	}
	return out
}

// defaultConfig holds the values New applies to zero Config fields.
func defaultConfig() Config {
	return Config{
		Debounce: defaultDebounce,
		Stdout:   os.Stdout,
		Logger:   slog.Default(),
	}
}

// DefaultIgnores returns a copy of the built-in ignore patterns.
func DefaultIgnores() []string {
	return slices.Clone(defaultIgnores)
}

// Validate checks that there is something to watch and that every pattern is
// a valid doublestar glob.
func (c Config) Validate() error {
	var errs []error
	if len(c.Roots) == 0 && len(c.Files) == 0 {
		errs = append(errs, errors.New("nothing to watch: no roots or files"))
	}
	for _, pat := range c.Patterns {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("invalid watch pattern %q", pat))
		}
	}
	for _, pat := range c.Ignore {
		if !doublestar.ValidatePattern(pat) {
			errs = append(errs, fmt.Errorf("invalid ignore pattern %q", pat))
		}
	}
	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("negative debounce %s", c.Debounce))
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("watch: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// New validates cfg and registers its roots, package directories and files
// with fsnotify. Roots that do not exist yet are skipped.
func New(cfg Config) (*Watcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := mergo.Merge(&cfg, defaultConfig()); err != nil {
		return nil, fmt.Errorf("watch: applying defaults: %w", err)
	}

	w := &Watcher{
		cfg:      cfg,
		files:    make(map[string]struct{}, len(cfg.Files)),
		ignores:  append(DefaultIgnores(), cfg.Ignore...),
		debounce: cfg.Debounce,
		stdout:   cfg.Stdout,
		logger:   cfg.Logger,
	}

	for _, r := range cfg.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve root %q: %w", r, err)
		}
		w.roots = append(w.roots, abs)
	}
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("watch: resolve file %q: %w", f, err)
		}
		w.files[abs] = struct{}{}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create fsnotify watcher: %w", err)
	}
	w.fsw = fsw

	if err := w.register(); err != nil {
		if closeErr := fsw.Close(); closeErr != nil {
			w.logger.Warn("watch: close after init failure", slog.Any("error", closeErr))
		}
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is canceled, dispatching debounced callbacks. It
// returns nil on cancellation and an error when fsnotify fails fatally. A
// callback still running when the debounce window closes again is not
// re-entered; the pending paths are retried after another window.
func (w *Watcher) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return errors.New("watch: Run called more than once")
	}

	var (
		mu      sync.Mutex
		pending = make(map[string]struct{})
		timer   *time.Timer
		running atomic.Bool
	)

	fire := func() {
		if ctx.Err() != nil {
			return
		}
		if !running.CompareAndSwap(false, true) {
			w.logger.Debug("watch: previous run still in progress, retrying")
			mu.Lock()
			if timer != nil {
				timer.Reset(w.debounce)
			}
			mu.Unlock()
			return
		}
		defer running.Store(false)

		mu.Lock()
		if len(pending) == 0 {
			mu.Unlock()
			return
		}
		changed := slices.Sorted(maps.Keys(pending))
		clear(pending)
		mu.Unlock()

		if w.cfg.ClearScreen {
			fmt.Fprint(w.stdout, "\033[2J\033[H")
		}
		if w.cfg.OnChange != nil {
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Error("watch: reload failed", slog.Any("error", err))
			}
		}
	}

	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("watch: close fsnotify", slog.Any("error", err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: fsnotify event channel closed unexpectedly")
			}
			if evt.Has(fsnotify.Create) {
				w.maybeAddPackageDir(evt.Name)
			}
			if !w.relevant(evt.Name) {
				continue
			}

			mu.Lock()
			pending[evt.Name] = struct{}{}
			if timer == nil {
				timer = time.AfterFunc(w.debounce, fire)
			} else {
				timer.Reset(w.debounce)
			}
			mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: fsnotify error channel closed unexpectedly")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: fatal fsnotify error: %w", err)
			}
			w.logger.Warn("watch: fsnotify error", slog.Any("error", err))
		}
	}
}

// register adds every root, its package directories, and the parent
// directory of every watched file.
func (w *Watcher) register() error {
	for _, root := range w.roots {
		entries, err := os.ReadDir(root)
		if errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("watch: workspace root does not exist", slog.String("path", root))
			continue
		}
		if err != nil {
			return fmt.Errorf("watch: list root %q: %w", root, err)
		}
		if err := w.fsw.Add(root); err != nil {
			return fmt.Errorf("watch: add root %q: %w", root, err)
		}
		for _, e := range entries {
			if !e.IsDir() || w.isIgnored(e.Name()) {
				continue
			}
			dir := filepath.Join(root, e.Name())
			if err := w.fsw.Add(dir); err != nil {
				return fmt.Errorf("watch: add package directory %q: %w", dir, err)
			}
		}
	}

	dirs := make(map[string]struct{}, len(w.files))
	for f := range w.files {
		dirs[filepath.Dir(f)] = struct{}{}
	}
	for dir := range dirs {
		if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("watch: directory of watched file does not exist", slog.String("path", dir))
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch: add directory %q: %w", dir, err)
		}
	}
	return nil
}

// maybeAddPackageDir starts watching a directory created directly under a
// root, so packages added after startup are picked up.
func (w *Watcher) maybeAddPackageDir(path string) {
	root, rel, ok := w.underRoot(path)
	if !ok || filepath.Dir(rel) != "." || w.isIgnored(rel) {
		return
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		w.logger.Warn("watch: add new package directory", slog.String("root", root), slog.Any("error", err))
	}
}

// relevant reports whether a change to path should trigger the callback.
func (w *Watcher) relevant(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	_, rel, ok := w.underRoot(path)
	if !ok || w.isIgnored(rel) {
		return false
	}
	return w.matchesPatterns(rel)
}

// underRoot returns the first root containing path and the slash-separated
// path relative to it.
func (w *Watcher) underRoot(path string) (root, rel string, ok bool) {
	for _, r := range w.roots {
		rel, err := filepath.Rel(r, path)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return r, filepath.ToSlash(rel), true
	}
	return "", "", false
}

func (w *Watcher) isIgnored(rel string) bool {
	return matchAny(w.ignores, rel)
}

func (w *Watcher) matchesPatterns(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if ok, err := doublestar.Match(pat, rel); err == nil && ok {
			return true
		}
	}
	return false
}
