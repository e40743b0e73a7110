package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Loader fetches and JSON/YAML-decodes the document at a resolved URI.
// internal/docload.Load is the HTTP+file-backed implementation the CLI and
// the MCP server pass in; tests can supply an in-memory stub.
type Loader func(uri string) (any, error)

// ReplaceRefs walks a generically-decoded JSON/YAML document (the result
// of unmarshalling into `any`) and replaces every `{"$ref": "..."}` node
// with the document it points to, honoring the same URI scheme table as
// ResolveURI plus local "#/json/pointer" fragments (spec.md §4.4, §6).
// Plugin pseudo-URIs (v#NAME://ARG) are never followed here — §4.3
// requires them to be legal only as a value of valid/validMeta, which
// ReplaceRefs does not inspect the semantics of.
func (r *Resolver) ReplaceRefs(root any, load Loader) (any, error) {
	return r.replace(root, root, load, map[string]bool{})
}

func (r *Resolver) replace(node, root any, load Loader, seen map[string]bool) (any, error) {
	switch t := node.(type) {
	case map[string]any:
		if ref, ok := t["$ref"].(string); ok && len(t) == 1 {
			if seen[ref] {
				return nil, fmt.Errorf("resolve: cyclic $ref %q", ref)
			}
			seen[ref] = true
			resolved, err := r.followRef(ref, root, load)
			if err != nil {
				return nil, err
			}
			expanded, err := r.replace(resolved, root, load, seen)
			delete(seen, ref)
			return expanded, err
		}
		out := make(map[string]any, len(t))
		for k, v := range t {
			rv, err := r.replace(v, root, load, seen)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			rv, err := r.replace(v, root, load, seen)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return node, nil
	}
}

func (r *Resolver) followRef(ref string, root any, load Loader) (any, error) {
	if strings.HasPrefix(ref, "#") {
		return resolveFragment(root, strings.TrimPrefix(ref, "#"))
	}

	uriPart, fragment := ref, ""
	if idx := strings.Index(ref, "#"); idx >= 0 {
		uriPart, fragment = ref[:idx], ref[idx+1:]
	}

	res, err := r.ResolveURI(uriPart)
	if err != nil {
		return nil, fmt.Errorf("resolve: $ref %q: %w", ref, err)
	}
	if res.Kind == KindPlugin {
		return nil, fmt.Errorf("resolve: $ref %q: plugin pseudo-URIs are not valid $ref targets", ref)
	}
	doc, err := load(res.URI)
	if err != nil {
		return nil, fmt.Errorf("resolve: load $ref target %q: %w", ref, err)
	}
	if fragment == "" {
		return doc, nil
	}
	return resolveFragment(doc, fragment)
}

// resolveFragment navigates a RFC 6901 JSON Pointer fragment ("/a/b/0")
// against an in-memory document using ojg/jp, the same JSON-path engine
// internal/ingest/json_walker.go in the teacher uses to query ingested
// JSON (grounded per SPEC_FULL.md §3).
func resolveFragment(doc any, fragment string) (any, error) {
	fragment = strings.TrimPrefix(fragment, "/")
	if fragment == "" {
		return doc, nil
	}
	segs := strings.Split(fragment, "/")
	for i, s := range segs {
		segs[i] = unescapePointerSegment(s)
	}
	path := pointerSegmentsToJP(segs)
	expr, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("resolve: invalid json pointer fragment %q: %w", fragment, err)
	}
	results := expr.Get(doc)
	if len(results) == 0 {
		return nil, fmt.Errorf("resolve: json pointer fragment %q did not resolve", fragment)
	}
	return results[0], nil
}

func unescapePointerSegment(s string) string {
	s = strings.ReplaceAll(s, "~1", "/")
	s = strings.ReplaceAll(s, "~0", "~")
	return s
}

// pointerSegmentsToJP renders JSON-pointer segments as an ojg/jp path
// expression, quoting any segment that isn't a bare numeric index.
func pointerSegmentsToJP(segs []string) string {
	var b strings.Builder
	for _, s := range segs {
		if _, err := strconv.Atoi(s); err == nil {
			b.WriteString("[" + s + "]")
			continue
		}
		escaped := strings.ReplaceAll(s, "'", "\\'")
		b.WriteString("['" + escaped + "']")
	}
	return b.String()
}
