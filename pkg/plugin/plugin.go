// SPDX-License-Identifier: MPL-2.0

// Package plugin defines the configuration hook contract shared by the
// workspace transforms and the hosts that run them.
//
// A host calls each plugin's Config hook once per configuration load, in
// plugin-list order, feeding every plugin the result of the previous one.
package plugin

import (
	"context"
	"fmt"

	"github.com/websublime/wsconfig/pkg/hostconfig"
)

type (
	// Plugin is a named unit exposing a configuration hook. Config must not
	// mutate its input; it returns a new Config, or nil to leave the
	// configuration unchanged.
	Plugin interface {
		Name() string
		Config(ctx context.Context, cfg hostconfig.Config) (hostconfig.Config, error)
	}

	// Func adapts a plain function into a Plugin.
	Func struct {
		PluginName string
		Hook       func(ctx context.Context, cfg hostconfig.Config) (hostconfig.Config, error)
	}

	// Pipeline applies plugins in order.
	Pipeline []Plugin

	// HookError reports which plugin's hook failed.
	HookError struct {
		Plugin string
		Err    error
	}
)

// Name returns the plugin name.
func (f Func) Name() string { return f.PluginName }

// Config calls the wrapped hook.
func (f Func) Config(ctx context.Context, cfg hostconfig.Config) (hostconfig.Config, error) {
	return f.Hook(ctx, cfg)
}

// Error implements the error interface.
func (e *HookError) Error() string {
	return fmt.Sprintf("plugin %s: config hook: %v", e.Plugin, e.Err)
}

// Unwrap returns the hook's error.
func (e *HookError) Unwrap() error { return e.Err }

// Apply runs every plugin's Config hook on the output of the previous one and
// returns the final configuration. The first failing hook aborts the load.
func (p Pipeline) Apply(ctx context.Context, cfg hostconfig.Config) (hostconfig.Config, error) {
	if cfg == nil {
		cfg = hostconfig.Config{}
	}
	for _, pl := range p {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("config load canceled: %w", err)
		}
		next, err := pl.Config(ctx, cfg)
		if err != nil {
			return nil, &HookError{Plugin: pl.Name(), Err: err}
		}
		if next != nil {
			cfg = next
		}
	}
	return cfg, nil
}

// Names returns the plugin names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, pl := range p {
		names[i] = pl.Name()
	}
	return names
}
