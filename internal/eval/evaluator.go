// Package eval implements the Evaluator (spec.md §4.5): the recursive
// interpreter that decides whether a rule tree is satisfied for a given
// path. Grounded directly on
// original_source/src/dirschema/validate.py::DSValidator.validate_path,
// translated from its stage-by-stage "match/rewrite, primitives, logic,
// next" structure.
package eval

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/adapter"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/jsonvalidate"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/match"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/meta"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/pathutil"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/resolve"
)

// defaultPattern is PathSlice._def_pat in the original: match anything,
// capture the whole window.
var defaultPattern = regexp.MustCompile(`(.*)`)

// SchemaLoader fetches and decodes an external JSON Schema document
// referenced by a resolved URI. The CLI and the MCP server wire this to
// internal/docload's HTTP+file-backed Load.
type SchemaLoader func(uri string) (any, error)

// Config bundles everything the Evaluator needs beyond the rule tree and
// target path: the TreeAdapter, the metadata convention, the schema
// resolver, and the JSON Schema validator (spec.md §6).
type Config struct {
	Adapter    adapter.Adapter
	Meta       *meta.Convention
	Resolver   *resolve.Resolver
	Validator  jsonvalidate.Validator
	LoadSchema SchemaLoader
}

// Finding is a single reported violation, keyed by its location in
// Errors. Mirrors DSValidationError in the original: either a plain
// message or JSON Schema validation detail, never both.
type Finding struct {
	Path       string
	Message    string
	JSONErrors jsonvalidate.Errors
}

// Errors maps a "/"-joined rule location (e.g. "allOf/2/valid") to the
// Finding reported there. An empty/nil Errors means success.
type Errors map[string]Finding

// Evaluate applies root to path under cfg, returning whether the rule
// was satisfied and the findings collected along the way (spec.md §4.5).
func Evaluate(cfg *Config, path string, root *api.Node) (bool, Errors) {
	c := &ctx{cfg: cfg, state: match.Root(path), errors: Errors{}}
	ok := c.validate(path, root)
	return ok, c.errors
}

// ctx is the per-recursion-branch evaluation context: MatchState plus
// the inherited regex pattern, current location, and this branch's own
// error accumulator (spec.md §3 DSEvalCtx equivalent).
type ctx struct {
	cfg        *Config
	state      match.State
	pattern    *regexp.Regexp
	patternErr error
	location   []string
	errors     Errors
	failed     bool
}

// child starts a fresh branch context for a sub-rule reached via the
// named key (or index, for allOf/anyOf/oneOf elements), inheriting the
// current match window and pattern but starting with empty errors — so
// a sibling rule never observes another sibling's findings (spec.md §9
// sibling isolation).
func (c *ctx) child(via string) *ctx {
	loc := make([]string, len(c.location)+1)
	copy(loc, c.location)
	loc[len(c.location)] = via
	return &ctx{
		cfg:      c.cfg,
		state:    c.state,
		pattern:  c.pattern,
		location: loc,
		errors:   Errors{},
	}
}

func (c *ctx) addFinding(childKey, msg string, jerr jsonvalidate.Errors, errPath string) {
	loc := c.location
	if childKey != "" {
		loc = make([]string, len(c.location)+1)
		copy(loc, c.location)
		loc[len(c.location)] = childKey
	}
	c.errors[strings.Join(loc, "/")] = Finding{Path: errPath, Message: msg, JSONErrors: jerr}
}

func (c *ctx) addErrors(other Errors) {
	for k, v := range other {
		c.errors[k] = v
	}
}

// validate implements DSValidator.validate_path.
func (c *ctx) validate(path string, node *api.Node) bool {
	if v, ok := node.IsTrivial(); ok {
		if !v {
			c.failed = true
			c.addFinding("", "reached unsatisfiable 'false' rule", nil, path)
		}
		return !c.failed
	}
	r := node.Rule

	// Apply this rule's own overrides to the inherited window/pattern
	// before evaluating it, mirroring DSEvalCtx.descend being invoked by
	// the parent right before recursing into validate_path for this rule.
	if r.MatchStart != nil || r.MatchStop != nil {
		c.state = c.state.WithWindow(r.MatchStart, r.MatchStop)
	}
	if r.Match != nil {
		if re, err := regexp.Compile(*r.Match); err == nil {
			c.pattern = re
			c.patternErr = nil
		} else {
			c.patternErr = err
		}
	}
	pat := c.pattern
	if pat == nil {
		pat = defaultPattern
	}

	// 1. match / rewrite
	pre, window, suf := pathutil.Slice(path, int(c.state.Start), int(c.state.Stop))
	windowStr := pathutil.WindowString(window)
	matchIdx := fullMatchIndex(pat, windowStr)

	nextPath := path
	if r.Match != nil || r.Rewrite != nil {
		op := "match"
		if r.Rewrite != nil {
			op = "rewrite"
		}
		if c.patternErr != nil {
			c.addFinding(op, fmt.Sprintf("invalid match pattern: %v", c.patternErr), nil, path)
			c.failed = true
			return false
		}
		if matchIdx == nil {
			// Applicability-miss (spec.md §4.5 step 3, §7): a rule whose
			// match doesn't apply to this path is skipped and counts as
			// satisfied, not as a validation error.
			return true
		}
		if r.Rewrite != nil {
			rewritten := string(pat.ExpandString(nil, *r.Rewrite, windowStr, matchIdx))
			nextPath = pathutil.Unslice(pre, pathutil.Segments(rewritten), suf)
		}
	}

	// report applies the rule's description override: if set and
	// non-empty, only the FIRST failure in this rule (primitive or
	// logical) produces a finding, at the rule's own location, with the
	// description text (capture-expanded) replacing the underlying detail
	// entirely. An empty description suppresses the finding. Without a
	// description, every failure is reported under its own key.
	report := func(childKey, msg string, jerr jsonvalidate.Errors, errPath string) {
		if r.Description == nil {
			c.addFinding(childKey, msg, jerr, errPath)
		} else if *r.Description != "" && !c.failed {
			c.addFinding("", expandTemplate(pat, windowStr, matchIdx, *r.Description), nil, path)
		}
		c.failed = true
	}

	// 2. primitive constraints: type, valid, validMeta
	isFile := c.cfg.Adapter.IsFile(path)
	isDir := c.cfg.Adapter.IsDir(path)

	if r.Type != nil && !r.Type.Satisfied(isFile, isDir) {
		msg := fmt.Sprintf("entity does not have expected type: %q", r.Type.String())
		switch *r.Type {
		case api.TypeAny:
			msg = "entity must exist (type: true)"
		case api.TypeMissing:
			msg = "entity must not exist (type: false)"
		}
		report("type", msg, nil, path)
	}

	for _, key := range [...]string{"valid", "validMeta"} {
		var sr *api.SchemaOrRef
		if key == "valid" {
			sr = r.Valid
		} else {
			sr = r.ValidMeta
		}
		if sr == nil {
			continue
		}
		if !isFile && !isDir {
			report(key, fmt.Sprintf("path %q does not exist", path), nil, path)
			continue
		}

		targetPath := path
		if key == "validMeta" {
			targetPath = c.cfg.Meta.CompanionFor(path, isDir)
		}

		res, err := c.cfg.Resolver.Resolve(sr)
		if err != nil {
			report(key, err.Error(), nil, targetPath)
			continue
		}

		if res.Kind == resolve.KindPlugin {
			jerr, err := c.cfg.Validator.InvokePlugin(res.Plugin.Name, res.Plugin.Arg, targetPath, c.cfg.Adapter)
			if err != nil {
				report(key, err.Error(), nil, targetPath)
				continue
			}
			if len(jerr) > 0 {
				report(key, "", jerr, targetPath)
			}
			continue
		}

		var schema any
		if res.Kind == resolve.KindInline {
			if res.InlineBool != nil {
				schema = *res.InlineBool
			} else {
				schema = res.Inline
			}
		} else {
			if c.cfg.LoadSchema == nil {
				report(key, "no schema loader configured for external schema references", nil, targetPath)
				continue
			}
			doc, err := c.cfg.LoadSchema(res.URI)
			if err != nil {
				report(key, fmt.Sprintf("failed to load schema %q: %v", res.URI, err), nil, targetPath)
				continue
			}
			schema = doc
		}

		data, err := c.cfg.Adapter.LoadJSON(targetPath)
		if err != nil {
			report(key, fmt.Sprintf("file %q could not be loaded or parsed", targetPath), nil, targetPath)
			continue
		}

		jerr, err := c.cfg.Validator.ValidateSchema(schema, data)
		if err != nil {
			report(key, fmt.Sprintf("schema validation error: %v", err), nil, targetPath)
			continue
		}
		if len(jerr) > 0 {
			report(key, "", jerr, targetPath)
		}
	}

	if c.failed {
		return false // primitive checks failed: don't evaluate logic/next
	}

	// 3. complex constraints: if/then/else, allOf/anyOf/oneOf, not

	// keepChildren reports whether nested sub-rule errors should be
	// merged into this node's report. A description replaces all
	// direct-child default messages (spec.md §4.5 step 7), so it
	// suppresses nested detail the same way details:false does.
	keepChildren := r.DetailsOrDefault() && (r.Description == nil || *r.Description == "")

	if r.If != nil {
		ifOK := c.child("if").validate(path, r.If)
		if ifOK {
			if r.Then != nil {
				thenChild := c.child("then")
				if !thenChild.validate(path, r.Then) {
					c.failed = true
					if keepChildren {
						c.addErrors(thenChild.errors)
					}
				}
			}
		} else if r.Else != nil {
			elseChild := c.child("else")
			if !elseChild.validate(path, r.Else) {
				c.failed = true
				if keepChildren {
					c.addErrors(elseChild.errors)
				}
			}
		}
		// 'if' itself failing (with no else) is never reported: it just
		// means the conditional branch doesn't apply.
	}

	for _, grp := range [...]struct {
		key   string
		nodes []api.Node
	}{{"allOf", r.AllOf}, {"anyOf", r.AnyOf}, {"oneOf", r.OneOf}} {
		if len(grp.nodes) == 0 {
			continue
		}
		opChild := c.child(grp.key)
		numFails := 0
		var suberrs []Errors
		for idx := range grp.nodes {
			sub := opChild.child(strconv.Itoa(idx))
			ok := sub.validate(path, &grp.nodes[idx])
			if ok && grp.key == "anyOf" {
				suberrs = nil
				numFails = 0
				break
			}
			if !ok {
				numFails++
				if len(sub.errors) > 0 {
					suberrs = append(suberrs, sub.errors)
				}
			}
		}
		numRules := len(grp.nodes)
		numSat := numRules - numFails
		violated := ""
		switch grp.key {
		case "allOf":
			if numFails > 0 {
				violated = "all"
			}
		case "oneOf":
			if numFails != numRules-1 {
				violated = "exactly 1"
			}
		case "anyOf":
			if numFails == numRules {
				violated = "at least 1"
			}
		}
		if violated != "" {
			msg := fmt.Sprintf("%s of %d sub-rules must be satisfied (satisfied: %d)", violated, numRules, numSat)
			report(grp.key, msg, nil, path)
			if keepChildren {
				for _, se := range suberrs {
					c.addErrors(se)
				}
			}
		}
	}

	if r.Not != nil {
		if c.child("not").validate(path, r.Not) {
			report("not", "negated sub-rule satisfied, but should have failed", nil, path)
		}
	}

	if c.failed {
		return false // logic constraints failed: don't evaluate 'next'
	}

	// 4. successor rule, on the possibly rewritten path
	if r.Next != nil {
		successorKey := r.SuccessorKey
		if successorKey == "" {
			successorKey = "next"
		}
		nextChild := c.child(successorKey)
		if !nextChild.validate(nextPath, r.Next) {
			if keepChildren {
				c.addErrors(nextChild.errors)
			}
			return false
		}
	}

	return true
}

func fullMatchIndex(re *regexp.Regexp, s string) []int {
	idx := re.FindStringSubmatchIndex(s)
	if idx == nil || idx[0] != 0 || idx[1] != len(s) {
		return nil
	}
	return idx
}

func expandTemplate(re *regexp.Regexp, s string, idx []int, tmpl string) string {
	if idx == nil {
		return tmpl
	}
	return string(re.ExpandString(nil, tmpl, s, idx))
}
