// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/websublime/wsconfig/pkg/hostconfig"
)

// hostFlags select where the host configuration comes from and goes to.
type hostFlags struct {
	input  string
	output string
	format string
}

// readHost loads the host configuration. An empty path starts from an empty
// configuration; "-" reads JSON from stdin.
func (a *App) readHost(path string) (hostconfig.Config, error) {
	switch path {
	case "":
		return hostconfig.Config{}, nil
	case "-":
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading host config from stdin: %w", err)
		}
		return hostconfig.Decode(hostconfig.FormatJSON, data)
	default:
		return hostconfig.Load(a.FS, path)
	}
}

// outputFormat picks the encoding: --format, then the extension of --out,
// then the configured default.
func (h hostFlags) outputFormat(fallback hostconfig.Format) (hostconfig.Format, error) {
	if h.format != "" {
		f := hostconfig.Format(h.format)
		return f, f.Validate()
	}
	if h.output != "" {
		return hostconfig.FormatFromPath(h.output)
	}
	return fallback, nil
}

// writeHost encodes cfg to --out, or to stdout when no output file is set.
func (a *App) writeHost(h hostFlags, fallback hostconfig.Format, cfg hostconfig.Config) error {
	f, err := h.outputFormat(fallback)
	if err != nil {
		return err
	}
	if h.output != "" {
		return hostconfig.Save(a.FS, h.output, f, cfg)
	}
	data, err := hostconfig.Encode(f, cfg)
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(data)
	return err
}
