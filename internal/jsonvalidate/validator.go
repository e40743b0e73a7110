// Package jsonvalidate implements the JsonValidator interface of
// spec.md §6: validating a JSON value against a JSON Schema, plus a
// plugin registry for custom validators invoked through `v#NAME://ARG`
// pseudo-URIs (spec.md §4.3).
package jsonvalidate

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/adapter"
)

// Errors maps JSON Pointers (into the validated instance) to the list of
// messages reported at that location, matching
// original_source/src/dirschema/json/validate.py::validate_jsonschema's
// JSONValidationErrors shape. A nil/empty map means validation succeeded.
type Errors map[string][]string

// Handler is a custom validation plugin, registered under the name used
// in a `v#NAME://ARG` pseudo-URI. Modeled on
// original_source/src/dirschema/json/handler.py::ValidationHandler: a
// handler implements exactly one of ValidateJSON/ValidateRaw, signaled by
// ForJSON.
type Handler interface {
	// ForJSON reports whether this handler validates decoded JSON
	// (ValidateJSON) rather than raw bytes (ValidateRaw).
	ForJSON() bool
	ValidateJSON(data any, arg string) (Errors, error)
	ValidateRaw(data []byte, arg string) (Errors, error)
}

// Validator is the JsonValidator interface of spec.md §6.
type Validator interface {
	// ValidateSchema validates value against an already-resolved JSON
	// Schema document (object or boolean schema).
	ValidateSchema(schema any, value any) (Errors, error)
	RegisterPlugin(name string, h Handler)
	// InvokePlugin runs a registered plugin against targetPath, loading
	// the data through ad the way the handler requires (JSON or raw
	// bytes). This is the (target_path, argument_string, adapter)
	// signature named in spec.md §6.
	InvokePlugin(name, arg, targetPath string, ad adapter.Adapter) (Errors, error)
}

// GoJSONSchema is the default Validator, backed by
// github.com/xeipuuv/gojsonschema — the only JSON-Schema validator
// library found anywhere in the retrieval pack (see SPEC_FULL.md §3).
type GoJSONSchema struct {
	plugins map[string]Handler
}

func New() *GoJSONSchema {
	return &GoJSONSchema{plugins: make(map[string]Handler)}
}

func (v *GoJSONSchema) RegisterPlugin(name string, h Handler) {
	v.plugins[name] = h
}

func (v *GoJSONSchema) ValidateSchema(schema any, value any) (Errors, error) {
	sLoader := gojsonschema.NewGoLoader(schema)
	compiled, err := gojsonschema.NewSchema(sLoader)
	if err != nil {
		return nil, fmt.Errorf("jsonvalidate: compile schema: %w", err)
	}
	result, err := compiled.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return nil, fmt.Errorf("jsonvalidate: validate: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	errs := Errors{}
	for _, e := range result.Errors() {
		ptr := fieldToPointer(e.Field())
		errs[ptr] = append(errs[ptr], e.Description())
	}
	return errs, nil
}

func (v *GoJSONSchema) InvokePlugin(name, arg, targetPath string, ad adapter.Adapter) (Errors, error) {
	h, ok := v.plugins[name]
	if !ok {
		return nil, fmt.Errorf("jsonvalidate: no registered plugin named %q", name)
	}
	if h.ForJSON() {
		data, err := ad.LoadJSON(targetPath)
		if err != nil {
			return nil, fmt.Errorf("jsonvalidate: plugin %q: %w", name, err)
		}
		return h.ValidateJSON(data, arg)
	}
	raw, err := ad.LoadRaw(targetPath)
	if err != nil {
		return nil, fmt.Errorf("jsonvalidate: plugin %q: %w", name, err)
	}
	return h.ValidateRaw(raw, arg)
}

// fieldToPointer converts gojsonschema's dot/bracket field notation
// (e.g. "items.0.name", or "(root)") into a JSON Pointer.
func fieldToPointer(field string) string {
	if field == "" || field == "(root)" {
		return ""
	}
	parts := strings.Split(field, ".")
	return "/" + strings.Join(parts, "/")
}
