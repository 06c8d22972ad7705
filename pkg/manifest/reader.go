// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/websublime/wsconfig/pkg/fspath"
	"github.com/websublime/wsconfig/pkg/hostconfig"
	"github.com/websublime/wsconfig/pkg/types"
)

// DefaultFileNames lists the manifest file names tried in each package
// directory, in order.
var DefaultFileNames = []string{"package.json", "package.yaml"}

type (
	// Reader loads the manifest of a package directory.
	Reader interface {
		Read(dir types.FilesystemPath) (Manifest, error)
	}

	// FSReader reads manifests from an afero filesystem.
	FSReader struct {
		fs        afero.Fs
		fileNames []string
	}
)

// NewReader creates a Reader over fsys. When no file names are given,
// DefaultFileNames is used.
func NewReader(fsys afero.Fs, fileNames ...string) *FSReader {
	if len(fileNames) == 0 {
		fileNames = DefaultFileNames
	}
	return &FSReader{fs: fsys, fileNames: fileNames}
}

// Read returns the first manifest found in dir. It fails with a
// *NotFoundError when none of the candidate files exist or can be read,
// and with a *ParseError when the first existing file is malformed.
func (r *FSReader) Read(dir types.FilesystemPath) (Manifest, error) {
	for _, name := range r.fileNames {
		path := fspath.JoinStr(dir, name)
		data, err := afero.ReadFile(r.fs, string(path))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, &NotFoundError{Dir: dir, Tried: r.fileNames, Cause: err}
		}

		m, err := Parse(name, data)
		if err != nil {
			return nil, &ParseError{Path: path, Cause: err}
		}
		return m, nil
	}

	return nil, &NotFoundError{Dir: dir, Tried: r.fileNames}
}

// Parse decodes manifest content. YAML is used for .yaml/.yml file names;
// everything else is treated as JSON.
func Parse(fileName string, data []byte) (Manifest, error) {
	var doc any
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	default:
		if err := hostconfig.JSON.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	}

	m := hostconfig.AsMap(hostconfig.Normalize(doc))
	if m == nil {
		return nil, fmt.Errorf("manifest must be a mapping, got %T", doc)
	}
	return Manifest(m), nil
}
