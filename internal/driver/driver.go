// Package driver implements the Driver component of spec.md §4.6:
// enumerate a target tree, skip metadata companions, evaluate the root
// rule against every remaining path, and assemble a report.
package driver

import (
	"encoding/json"
	"fmt"

	"github.com/RoaringBitmap/roaring"
	"gopkg.in/yaml.v3"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/adapter"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/eval"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/meta"
)

// Report maps a target path to the Errors the Evaluator produced for it.
// Only paths that failed appear; an empty Report means the whole tree
// validated successfully.
type Report map[string]eval.Errors

// Driver ties an Adapter, a MetaConvention and an Evaluator Config to a
// single root rule, running it over an entire enumerated tree.
type Driver struct {
	Adapter adapter.Adapter
	Meta    *meta.Convention
	EvalCfg *eval.Config
	Root    *api.Node
}

// New constructs a Driver. EvalCfg.Adapter and EvalCfg.Meta are expected
// to already point at adapter/conv; they're kept independent because
// internal/eval doesn't depend on internal/driver.
func New(ad adapter.Adapter, conv *meta.Convention, evalCfg *eval.Config, root *api.Node) *Driver {
	return &Driver{Adapter: ad, Meta: conv, EvalCfg: evalCfg, Root: root}
}

// Run enumerates the adapter, filters out metadata companions using a
// roaring bitmap over enumeration indices (spec.md §4.6 steps 1-2), and
// evaluates the root rule against every remaining path in enumeration
// order (step 3-4).
func (d *Driver) Run() (Report, error) {
	paths, err := d.Adapter.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("driver: enumerate: %w", err)
	}

	companions := roaring.New()
	for i, p := range paths {
		if d.Meta.IsCompanion(p) {
			companions.Add(uint32(i))
		}
	}

	report := make(Report)
	for i, p := range paths {
		if companions.Contains(uint32(i)) {
			continue
		}
		ok, errs := eval.Evaluate(d.EvalCfg, p, d.Root)
		if ok {
			continue
		}
		if len(errs) == 0 {
			errs = eval.Errors{"": eval.Finding{Path: p, Message: "validation failed (no error detail available)"}}
		}
		report[p] = errs
	}
	return report, nil
}

// jsonEntry is the per-location error shape in the serialized report,
// mirroring DSValidationError in the original.
type jsonEntry struct {
	Path string `json:"path" yaml:"path"`
	Err  any    `json:"err" yaml:"err"`
}

// ToJSON converts a Report into a JSON/YAML-marshalable structure:
// path -> JSON-pointer location -> {path, err}, matching
// DSValidator.errors_to_json in the original.
func ToJSON(r Report) map[string]map[string]jsonEntry {
	out := make(map[string]map[string]jsonEntry, len(r))
	for path, errs := range r {
		locs := make(map[string]jsonEntry, len(errs))
		for loc, f := range errs {
			var errVal any = f.Message
			if f.JSONErrors != nil {
				errVal = f.JSONErrors
			}
			locs["/"+loc] = jsonEntry{Path: f.Path, Err: errVal}
		}
		out[path] = locs
	}
	return out
}

// FormatYAML renders a Report as YAML, the default report format
// (mirrors DSValidator.format_errors).
func FormatYAML(r Report) (string, error) {
	out, err := yaml.Marshal(ToJSON(r))
	if err != nil {
		return "", fmt.Errorf("driver: format report as yaml: %w", err)
	}
	return string(out), nil
}

// FormatJSON renders a Report as indented JSON (SPEC_FULL.md §4: the
// `--format json` CLI option).
func FormatJSON(r Report) (string, error) {
	out, err := json.MarshalIndent(ToJSON(r), "", "  ")
	if err != nil {
		return "", fmt.Errorf("driver: format report as json: %w", err)
	}
	return string(out), nil
}
