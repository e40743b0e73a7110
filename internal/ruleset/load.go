// Package ruleset parses a JSON/YAML rule document (spec.md §4.4, §6)
// into the typed api.Node/api.Rule tree the Evaluator consumes.
// ParseDocument assumes the document has no unresolved $refs left;
// ParseDocumentWithRefs runs internal/resolve's $ref replacement first,
// for callers loading a document straight off disk or the network.
package ruleset

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/resolve"
)

// LintWarning is a non-fatal issue detected while loading a rule document
// (spec.md §3: "rewrite without next/then... should produce a lint
// warning but not an error").
type LintWarning struct {
	Location string
	Message  string
}

func (w LintWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Location, w.Message)
}

// recognizedKeys is used only to produce a helpful "unknown key" error;
// the actual per-key decoding happens in decodeRule.
var recognizedKeys = map[string]bool{
	"match": true, "matchStart": true, "matchStop": true, "rewrite": true,
	"type": true, "valid": true, "validMeta": true,
	"not": true, "allOf": true, "anyOf": true, "oneOf": true,
	"if": true, "then": true, "else": true, "next": true,
	"description": true, "details": true,
}

// ParseDocument parses raw YAML or JSON bytes (YAML is a superset of the
// JSON object/array/scalar grammar DirSchema documents use) into a rule
// tree, returning any lint warnings accumulated along the way.
func ParseDocument(raw []byte) (*api.Node, []LintWarning, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, nil, fmt.Errorf("ruleset: parse document: %w", err)
	}
	var warnings []LintWarning
	node, err := decodeNode(generic, "$", &warnings)
	if err != nil {
		return nil, warnings, err
	}
	return node, warnings, nil
}

// ParseDocumentWithRefs resolves every `$ref` in the document (spec.md
// §4.4) via resolver before decoding it into a rule tree. load fetches
// the JSON/YAML document a non-local $ref points to.
func ParseDocumentWithRefs(raw []byte, resolver *resolve.Resolver, load resolve.Loader) (*api.Node, []LintWarning, error) {
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, nil, fmt.Errorf("ruleset: parse document: %w", err)
	}

	resolved, err := resolver.ReplaceRefs(generic, load)
	if err != nil {
		return nil, nil, fmt.Errorf("ruleset: resolve refs: %w", err)
	}

	var warnings []LintWarning
	node, err := decodeNode(resolved, "$", &warnings)
	if err != nil {
		return nil, warnings, err
	}
	return node, warnings, nil
}

func decodeNode(v any, loc string, warnings *[]LintWarning) (*api.Node, error) {
	switch t := v.(type) {
	case bool:
		return api.BoolNode(t), nil
	case map[string]any:
		return decodeRule(t, loc, warnings)
	default:
		return nil, fmt.Errorf("ruleset: %s: rule must be a boolean or a mapping, got %T", loc, v)
	}
}

func decodeRule(m map[string]any, loc string, warnings *[]LintWarning) (*api.Node, error) {
	for k := range m {
		if !recognizedKeys[k] {
			return nil, fmt.Errorf("ruleset: %s: unrecognized rule key %q", loc, k)
		}
	}

	r := &api.Rule{}

	if v, ok := m["match"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("ruleset: %s.match: expected string", loc)
		}
		r.Match = &s
	}
	if v, ok := m["matchStart"]; ok {
		i, err := toInt32(v, loc+".matchStart")
		if err != nil {
			return nil, err
		}
		r.MatchStart = &i
	}
	if v, ok := m["matchStop"]; ok {
		i, err := toInt32(v, loc+".matchStop")
		if err != nil {
			return nil, err
		}
		r.MatchStop = &i
	}
	if v, ok := m["rewrite"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("ruleset: %s.rewrite: expected string", loc)
		}
		r.Rewrite = &s
	}

	if v, ok := m["type"]; ok {
		tk, err := decodeTypeKind(v, loc+".type")
		if err != nil {
			return nil, err
		}
		r.Type = &tk
	}
	if v, ok := m["valid"]; ok {
		sr, err := decodeSchemaOrRef(v, loc+".valid")
		if err != nil {
			return nil, err
		}
		r.Valid = sr
	}
	if v, ok := m["validMeta"]; ok {
		sr, err := decodeSchemaOrRef(v, loc+".validMeta")
		if err != nil {
			return nil, err
		}
		r.ValidMeta = sr
	}

	if v, ok := m["not"]; ok {
		n, err := decodeNode(v, loc+".not", warnings)
		if err != nil {
			return nil, err
		}
		r.Not = n
	}
	for _, key := range []string{"allOf", "anyOf", "oneOf"} {
		v, ok := m[key]
		if !ok {
			continue
		}
		lst, ok := v.([]any)
		if !ok {
			return nil, fmt.Errorf("ruleset: %s.%s: expected a list", loc, key)
		}
		nodes := make([]api.Node, 0, len(lst))
		for i, el := range lst {
			n, err := decodeNode(el, fmt.Sprintf("%s.%s[%d]", loc, key, i), warnings)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, *n)
		}
		switch key {
		case "allOf":
			r.AllOf = nodes
		case "anyOf":
			r.AnyOf = nodes
		case "oneOf":
			r.OneOf = nodes
		}
	}

	_, hasIf := m["if"]
	thenVal, hasThen := m["then"]
	elseVal, hasElse := m["else"]
	nextVal, hasNext := m["next"]

	if hasIf {
		ifNode, err := decodeNode(m["if"], loc+".if", warnings)
		if err != nil {
			return nil, err
		}
		r.If = ifNode
		if hasThen {
			n, err := decodeNode(thenVal, loc+".then", warnings)
			if err != nil {
				return nil, err
			}
			r.Then = n
		}
		if hasElse {
			n, err := decodeNode(elseVal, loc+".else", warnings)
			if err != nil {
				return nil, err
			}
			r.Else = n
		}
		if hasNext {
			n, err := decodeNode(nextVal, loc+".next", warnings)
			if err != nil {
				return nil, err
			}
			r.Next = n
		}
	} else {
		if hasElse {
			return nil, fmt.Errorf("ruleset: %s: 'else' without 'if' is not allowed", loc)
		}
		if hasThen && hasNext {
			return nil, fmt.Errorf("ruleset: %s: ambiguous successor: both legacy 'then' and 'next' are set without 'if'", loc)
		}
		if hasNext {
			n, err := decodeNode(nextVal, loc+".next", warnings)
			if err != nil {
				return nil, err
			}
			r.Next = n
		} else if hasThen {
			// Legacy era: bare `then` (no `if`) is the successor rule.
			n, err := decodeNode(thenVal, loc+".then", warnings)
			if err != nil {
				return nil, err
			}
			r.Next = n
			r.SuccessorKey = "then"
		}
	}

	if v, ok := m["description"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("ruleset: %s.description: expected string", loc)
		}
		r.Description = &s
	}
	if v, ok := m["details"]; ok {
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("ruleset: %s.details: expected bool", loc)
		}
		r.Details = &b
	}

	if r.Rewrite != nil && r.Next == nil {
		*warnings = append(*warnings, LintWarning{
			Location: loc,
			Message:  "'rewrite' has no effect without 'next' (or legacy 'then' successor)",
		})
	}

	return &api.Node{Rule: r}, nil
}

func decodeTypeKind(v any, loc string) (api.TypeKind, error) {
	switch t := v.(type) {
	case bool:
		if t {
			return api.TypeAny, nil
		}
		return api.TypeMissing, nil
	case string:
		switch t {
		case "file":
			return api.TypeFile, nil
		case "dir":
			return api.TypeDir, nil
		default:
			return 0, fmt.Errorf("ruleset: %s: invalid type value %q (want bool, \"file\", or \"dir\")", loc, t)
		}
	default:
		return 0, fmt.Errorf("ruleset: %s: invalid type value of kind %T", loc, v)
	}
}

func decodeSchemaOrRef(v any, loc string) (*api.SchemaOrRef, error) {
	switch t := v.(type) {
	case string:
		return &api.SchemaOrRef{Ref: t, IsRef: true}, nil
	case bool:
		return &api.SchemaOrRef{InlineBool: &t}, nil
	case map[string]any:
		return &api.SchemaOrRef{Inline: t}, nil
	default:
		return nil, fmt.Errorf("ruleset: %s: expected an inline JSON Schema or a string reference, got %T", loc, v)
	}
}

func toInt32(v any, loc string) (int32, error) {
	var f float64
	switch t := v.(type) {
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case uint64:
		f = float64(t)
	case float64:
		f = t
	default:
		return 0, fmt.Errorf("ruleset: %s: expected an integer, got %T", loc, v)
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, fmt.Errorf("ruleset: %s: value %v is not representable as a signed 32-bit integer", loc, v)
	}
	return int32(f), nil
}
