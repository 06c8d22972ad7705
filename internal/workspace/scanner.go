// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"dario.cat/mergo"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/websublime/wsconfig/pkg/fspath"
	"github.com/websublime/wsconfig/pkg/manifest"
	"github.com/websublime/wsconfig/pkg/types"
)

type (
	// PackageEntry is a package directory and its parsed manifest.
	// Manifest is nil when the directory has no readable manifest.
	PackageEntry struct {
		Dir      types.FilesystemPath
		Manifest manifest.Manifest
	}

	// Options configures a Scanner. Zero fields take defaults.
	Options struct {
		// FS is the filesystem to scan. Defaults to the OS filesystem.
		FS afero.Fs
		// Reader loads manifests. Defaults to a manifest.FSReader over FS
		// trying ManifestFiles.
		Reader manifest.Reader
		// BaseDir anchors relative workspace roots. Defaults to the working directory.
		BaseDir types.FilesystemPath
		// ManifestFiles are the manifest file names tried in each package directory.
		ManifestFiles []string
		// Ignore holds doublestar patterns matched against child directory
		// names; matching directories are skipped.
		Ignore []string
	}

	// Scanner enumerates package directories under workspace roots.
	Scanner struct {
		fs      afero.Fs
		reader  manifest.Reader
		baseDir types.FilesystemPath
		ignore  []string
	}
)

// DefaultOptions returns the defaults applied to zero Options fields.
func DefaultOptions() Options {
	return Options{
		FS:            afero.NewOsFs(),
		ManifestFiles: manifest.DefaultFileNames,
	}
}

// NewScanner creates a Scanner. It fails when an ignore pattern is not a
// valid glob or the working directory cannot be determined.
func NewScanner(opts Options) (*Scanner, error) {
	if err := mergo.Merge(&opts, DefaultOptions()); err != nil {
		return nil, fmt.Errorf("applying scanner defaults: %w", err)
	}
	if opts.Reader == nil {
		opts.Reader = manifest.NewReader(opts.FS, opts.ManifestFiles...)
	}
	if opts.BaseDir == "" {
		wd, err := fspath.Abs(".")
		if err != nil {
			return nil, fmt.Errorf("workspace: determine working directory: %w", err)
		}
		opts.BaseDir = wd
	}
	for _, pat := range opts.Ignore {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("workspace: invalid ignore pattern %q", pat)
		}
	}

	return &Scanner{
		fs:      opts.FS,
		reader:  opts.Reader,
		baseDir: opts.BaseDir,
		ignore:  opts.Ignore,
	}, nil
}

// Resolve returns root as an absolute path, anchoring relative roots at the
// scanner's base directory.
func (s *Scanner) Resolve(root types.FilesystemPath) types.FilesystemPath {
	return fspath.Resolve(s.baseDir, string(root))
}

// Scan lists the immediate child directories of root and reads each one's
// manifest. Entries come back in directory listing order. Directories with a
// missing or malformed manifest are returned with a nil Manifest; malformed
// ones also produce a diagnostic. A root that does not exist yields no
// entries and a warning. Any other listing failure is returned as an error.
func (s *Scanner) Scan(ctx context.Context, root types.FilesystemPath) ([]PackageEntry, []Diagnostic, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("workspace scan canceled: %w", err)
	}

	absRoot := s.Resolve(root)
	infos, err := afero.ReadDir(s.fs, string(absRoot))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, []Diagnostic{{
			Severity: SeverityWarning,
			Code:     CodeRootMissing,
			Message:  fmt.Sprintf("workspace root %s does not exist", absRoot),
			Path:     string(absRoot),
			Cause:    err,
		}}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("listing workspace root %s: %w", absRoot, err)
	}

	entries := make([]PackageEntry, 0, len(infos))
	var diags []Diagnostic
	for _, info := range infos {
		if !info.IsDir() || s.ignored(info.Name()) {
			continue
		}

		dir := fspath.JoinStr(absRoot, info.Name())
		m, err := s.reader.Read(dir)
		if err != nil {
			if d, ok := manifestDiagnostic(dir, err); ok {
				diags = append(diags, d)
			}
			entries = append(entries, PackageEntry{Dir: dir})
			continue
		}
		entries = append(entries, PackageEntry{Dir: dir, Manifest: m})
	}

	return entries, diags, nil
}

// ScanAll scans every root in order and concatenates the results.
func (s *Scanner) ScanAll(ctx context.Context, roots []types.FilesystemPath) ([]PackageEntry, []Diagnostic, error) {
	var (
		all   []PackageEntry
		diags []Diagnostic
	)
	for _, root := range roots {
		entries, rootDiags, err := s.Scan(ctx, root)
		if err != nil {
			return nil, nil, err
		}
		all = append(all, entries...)
		diags = append(diags, rootDiags...)
	}
	return all, diags, nil
}

func (s *Scanner) ignored(name string) bool {
	for _, pat := range s.ignore {
		if ok, err := doublestar.Match(pat, filepath.ToSlash(name)); err == nil && ok {
			return true
		}
	}
	return false
}

// manifestDiagnostic turns a manifest read failure into a diagnostic. A
// directory that simply has no manifest is not worth reporting.
func manifestDiagnostic(dir types.FilesystemPath, err error) (Diagnostic, bool) {
	var nf *manifest.NotFoundError
	if errors.As(err, &nf) && nf.Cause == nil {
		return Diagnostic{}, false
	}
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeManifestSkipped,
		Message:  fmt.Sprintf("skipping package at %s: %v", dir, err),
		Path:     string(dir),
		Cause:    err,
	}, true
}
