// Package resolve implements the SchemaResolver component of spec.md
// §4.3: turning a `valid`/`validMeta` value into either a local/remote
// JSON Schema reference, an inline schema, or a plugin invocation.
package resolve

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
)

// Kind discriminates the outcome of resolving a schema-or-ref value.
type Kind int

const (
	KindInline Kind = iota
	KindURI
	KindPlugin
)

// PluginRef is the parsed form of a `v#NAME://ARG` pseudo-URI.
type PluginRef struct {
	Name string
	Arg  string
}

// Resolution is what a SchemaOrRef resolves to.
type Resolution struct {
	Kind       Kind
	URI        string // set when Kind == KindURI
	Plugin     *PluginRef
	Inline     map[string]any
	InlineBool *bool
}

// Resolver holds the configuration needed to turn relative references
// into absolute ones (spec.md §4.3, and the `relative_prefix` override
// supplemented from original_source in SPEC_FULL.md §4).
type Resolver struct {
	// LocalBaseDir is the base for local:// URIs. The CLI and the MCP
	// server set it to the directory containing the dirschema document
	// unless one is configured; when empty, WorkingDir is used.
	LocalBaseDir string
	// WorkingDir is the base for cwd:// URIs and bare relative paths.
	WorkingDir string
	// RelativePrefix overrides the implicit "cwd://" prefix applied to
	// bare relative references (e.g. to force "local://" resolution).
	RelativePrefix string
}

// Resolve turns a parsed SchemaOrRef into a Resolution.
func (r *Resolver) Resolve(sr *api.SchemaOrRef) (*Resolution, error) {
	if sr == nil {
		return nil, fmt.Errorf("resolve: nil schema reference")
	}
	if sr.Inline != nil {
		return &Resolution{Kind: KindInline, Inline: sr.Inline}, nil
	}
	if sr.InlineBool != nil {
		return &Resolution{Kind: KindInline, InlineBool: sr.InlineBool}, nil
	}
	if !sr.IsRef {
		return nil, fmt.Errorf("resolve: empty schema reference")
	}
	return r.ResolveURI(sr.Ref)
}

// ResolveURI implements the URI-scheme table of spec.md §4.3.
func (r *Resolver) ResolveURI(raw string) (*Resolution, error) {
	if name, arg, ok := parsePluginURI(raw); ok {
		return &Resolution{Kind: KindPlugin, Plugin: &PluginRef{Name: name, Arg: arg}}, nil
	}

	scheme, rest, hasScheme := splitScheme(raw)

	switch {
	case hasScheme && (scheme == "http" || scheme == "https"):
		return &Resolution{Kind: KindURI, URI: raw}, nil
	case hasScheme && scheme == "file":
		return &Resolution{Kind: KindURI, URI: raw}, nil
	case !hasScheme && filepath.IsAbs(raw):
		return &Resolution{Kind: KindURI, URI: "file://" + raw}, nil
	case hasScheme && scheme == "local":
		base := r.LocalBaseDir
		if base == "" {
			base = r.WorkingDir
		}
		return &Resolution{Kind: KindURI, URI: "file://" + absJoin(base, rest)}, nil
	case hasScheme && scheme == "cwd":
		return &Resolution{Kind: KindURI, URI: "file://" + absJoin(r.WorkingDir, rest)}, nil
	case hasScheme:
		return nil, fmt.Errorf("resolve: unknown URI scheme %q", scheme)
	default:
		// Bare relative path: treat as cwd:// unless overridden.
		prefix := r.RelativePrefix
		if prefix == "" {
			prefix = "cwd://"
		}
		return r.ResolveURI(prefix + raw)
	}
}

func absJoin(base, rest string) string {
	if base == "" {
		abs, err := filepath.Abs(rest)
		if err == nil {
			return abs
		}
		return rest
	}
	return filepath.Join(base, rest)
}

// splitScheme splits "scheme://rest"; returns ok=false if no "://" is present.
func splitScheme(raw string) (scheme, rest string, ok bool) {
	idx := strings.Index(raw, "://")
	if idx < 0 {
		return "", raw, false
	}
	return raw[:idx], raw[idx+3:], true
}

// parsePluginURI parses "v#NAME://ARG" pseudo-URIs (spec.md §4.3).
func parsePluginURI(raw string) (name, arg string, ok bool) {
	if !strings.HasPrefix(raw, "v#") {
		return "", "", false
	}
	rest := raw[2:]
	idx := strings.Index(rest, "://")
	if idx <= 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+3:], true
}
