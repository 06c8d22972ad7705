// SPDX-License-Identifier: MPL-2.0

package hostconfig

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/bytedance/sonic"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	// FormatJSON is a JSON document (vite.config.json).
	FormatJSON Format = "json"
	// FormatYAML is a YAML document.
	FormatYAML Format = "yaml"
	// FormatTOML is a TOML document.
	FormatTOML Format = "toml"
	// FormatCUE is a CUE document; it must evaluate to a concrete struct.
	FormatCUE Format = "cue"
)

// ErrUnsupportedFormat is the sentinel error wrapped by UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported config format")

type (
	// Format names a serialization of a host Config.
	Format string

	// UnsupportedFormatError is returned for unknown formats or file extensions.
	UnsupportedFormatError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported config format %q (expected json, yaml, toml or cue)", e.Value)
}

// Unwrap returns ErrUnsupportedFormat for errors.Is() compatibility.
func (e *UnsupportedFormatError) Unwrap() error { return ErrUnsupportedFormat }

// JSON is the sonic API used for configuration and manifest documents.
// Integers decode to int64 so they survive re-encoding as YAML or TOML.
var JSON = sonic.Config{
	EscapeHTML:       true,
	SortMapKeys:      true,
	CompactMarshaler: true,
	CopyString:       true,
	ValidateString:   true,
	UseInt64:         true,
}.Froze()

// Formats returns all supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatTOML, FormatCUE}
}

// Validate returns an error if f is not a supported format.
func (f Format) Validate() error {
	switch f {
	case FormatJSON, FormatYAML, FormatTOML, FormatCUE:
		return nil
	default:
		return &UnsupportedFormatError{Value: string(f)}
	}
}

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "cue":
		return FormatCUE, nil
	default:
		return "", &UnsupportedFormatError{Value: ext}
	}
}

// Decode parses data in the given format. Empty documents decode to an
// empty Config.
func Decode(f Format, data []byte) (Config, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Config{}, nil
	}

	var m map[string]any
	switch f {
	case FormatJSON:
		if err := JSON.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding json config: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding yaml config: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding toml config: %w", err)
		}
	case FormatCUE:
		v := cuecontext.New().CompileBytes(data)
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("compiling cue config: %w", err)
		}
		if err := v.Validate(cue.Concrete(true)); err != nil {
			return nil, fmt.Errorf("validating cue config: %w", err)
		}
		if err := v.Decode(&m); err != nil {
			return nil, fmt.Errorf("decoding cue config: %w", err)
		}
	default:
		return nil, &UnsupportedFormatError{Value: string(f)}
	}

	if m == nil {
		return Config{}, nil
	}
	return Config(Normalize(m).(map[string]any)), nil
}

// Encode serializes cfg in the given format. Mapping keys are emitted in
// sorted order so output is stable across runs.
func Encode(f Format, cfg Config) ([]byte, error) {
	if cfg == nil {
		cfg = Config{}
	}
	m := map[string]any(cfg)

	switch f {
	case FormatJSON:
		out, err := JSON.MarshalIndent(m, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding json config: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML:
		out, err := yaml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encoding yaml config: %w", err)
		}
		return out, nil
	case FormatTOML:
		out, err := toml.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("encoding toml config: %w", err)
		}
		return out, nil
	case FormatCUE:
		v := cuecontext.New().Encode(m)
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("encoding cue config: %w", err)
		}
		out, err := format.Node(v.Syntax())
		if err != nil {
			return nil, fmt.Errorf("formatting cue config: %w", err)
		}
		return append(out, '\n'), nil
	default:
		return nil, &UnsupportedFormatError{Value: string(f)}
	}
}

// Load reads and decodes the config file at path, inferring the format from
// its extension.
func Load(fsys afero.Fs, path string) (Config, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading host config: %w", err)
	}
	cfg, err := Decode(f, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save encodes cfg and writes it to path, creating missing parent
// directories.
func Save(fsys afero.Fs, path string, f Format, cfg Config) error {
	data, err := Encode(f, cfg)
	if err != nil {
		return err
	}
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating host config directory: %w", err)
	}
	if err := afero.WriteFile(fsys, path, data, 0o644); err != nil {
		return fmt.Errorf("writing host config: %w", err)
	}
	return nil
}
