// Package adapter implements the TreeAdapter interface (spec.md §6) and
// its concrete backends. TreeAdapter is the sole mandatory external
// contract of the engine: enumerate paths, classify them, and load JSON
// content. Adapter polymorphism (spec.md §9) means internal/eval and
// internal/driver only ever see the Adapter interface below, never a
// concrete kind.
package adapter

import "fmt"

// Adapter enumerates normalized paths in a target tree and answers
// structural/content queries about them (spec.md §3, §6).
type Adapter interface {
	// Enumerate returns every path in the tree, in adapter-defined but
	// stable order, including the root path (the empty string).
	Enumerate() ([]string, error)

	IsFile(path string) bool
	IsDir(path string) bool
	Exists(path string) bool

	// LoadJSON loads and parses path as JSON. Returns LoadError (wrapped)
	// if the path does not exist, cannot be read, or does not parse.
	LoadJSON(path string) (any, error)

	// LoadRaw loads path's raw byte content, for plugin validators that
	// don't want JSON decoding (spec.md §6, SPEC_FULL.md §4).
	LoadRaw(path string) ([]byte, error)
}

// LoadError is returned (wrapped) by LoadJSON on any failure to produce a
// JSON value: missing path, unreadable, or unparsable content.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("adapter: load %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
