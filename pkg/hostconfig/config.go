// SPDX-License-Identifier: MPL-2.0

package hostconfig

import (
	"fmt"

	"golang.org/x/exp/maps"
)

const (
	// KeyRoot holds the directory of the package being built.
	KeyRoot = "root"
	// KeyResolve holds module resolution options.
	KeyResolve = "resolve"
	// KeyAlias is the alias map inside the resolve section.
	KeyAlias = "alias"
	// KeyBuild holds build options.
	KeyBuild = "build"
	// KeyRollupOptions holds bundler (rollup) options inside the build section.
	KeyRollupOptions = "rollupOptions"
	// KeyInput is the entry point option inside rollupOptions.
	KeyInput = "input"
)

// Config is a host bundler configuration object.
type Config map[string]any

// Section returns the mapping stored under key, or nil when the key is
// absent or does not hold a mapping.
func (c Config) Section(key string) map[string]any {
	return AsMap(c[key])
}

// Lookup walks nested mappings along path and returns the value found at
// the end. The boolean is false when any step is missing or not a mapping.
func (c Config) Lookup(path ...string) (any, bool) {
	var cur any = map[string]any(c)
	for _, key := range path {
		m := AsMap(cur)
		if m == nil {
			return nil, false
		}
		v, ok := m[key]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// Copy returns a shallow copy of c. The copy is never nil.
func (c Config) Copy() Config {
	return Config(CopyMap(c))
}

// Clone returns a deep copy of c. Nested mappings and lists are copied;
// scalar values are shared.
func (c Config) Clone() Config {
	if c == nil {
		return Config{}
	}
	return Config(cloneValue(map[string]any(c)).(map[string]any))
}

// AsMap returns v as a string-keyed mapping when it is one. Mappings with
// non-string keys (as produced by some YAML documents) are converted; any
// other value yields nil.
func AsMap(v any) map[string]any {
	switch m := v.(type) {
	case map[string]any:
		return m
	case Config:
		return map[string]any(m)
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return nil
	}
}

// CopyMap returns a shallow copy of m. The copy is never nil, so callers can
// write into it directly.
func CopyMap(m map[string]any) map[string]any {
	if m == nil {
		return make(map[string]any)
	}
	return maps.Clone(m)
}

// Overlay returns a new mapping holding the entries of every layer in order;
// later layers win on key collisions. Nil layers are skipped.
func Overlay(layers ...map[string]any) map[string]any {
	out := make(map[string]any)
	for _, layer := range layers {
		maps.Copy(out, layer)
	}
	return out
}

// Normalize converts every nested mapping in v to map[string]any so decoded
// documents can be navigated uniformly.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = Normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Config:
		return cloneValue(map[string]any(t))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
