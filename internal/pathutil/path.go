// Package pathutil implements path normalization and the segment-slicing
// window used to resolve matchStart/matchStop against a normalized path.
package pathutil

import "strings"

// Root is the normalized form of the root path.
const Root = ""

// Normalize canonicalizes a path string: splits on '/', drops empty
// segments caused by leading/repeated/trailing slashes, rejects '.' and
// '..' components, and rejoins with a single '/'. The root path
// normalizes to the empty string.
//
// Normalize is idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(p string) string {
	raw := strings.Split(p, "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s == "" || s == "." {
			continue
		}
		if s == ".." {
			// Non-goal: no traversal resolution. A ".." component is
			// simply dropped, same as any other rejected segment, since
			// adapters never expose paths outside their own tree.
			continue
		}
		segs = append(segs, s)
	}
	return strings.Join(segs, "/")
}

// Segments splits a normalized path into its '/'-delimited segments.
// The root path yields a single empty-string segment, matching Python's
// "".split("/") == [""] semantics relied upon by the original slicing
// algorithm (see PathSlice.into in original_source).
func Segments(p string) []string {
	return strings.Split(p, "/")
}

// Join re-normalizes a sequence of segments back into a path string.
func Join(segs []string) string {
	return Normalize(strings.Join(segs, "/"))
}

// Slice resolves the effective [start:stop) window over a path's segments
// using Python-slice semantics, with the DirSchema-specific twist that
// stop == 0 means "to the end" rather than "empty". Negative indices
// count from the end. The three returned segment slices are the prefix
// (before start), the window itself, and the suffix (from the resolved
// stop onward); rejoining pre+window+suf with '/' recovers the original
// path (see the PathSlice invariant in spec.md §4.5).
func Slice(p string, start, stop int) (pre, window, suf []string) {
	segs := Segments(p)
	n := len(segs)

	resolve := func(idx int) int {
		if idx < 0 {
			idx = n + idx
		}
		if idx < 0 {
			idx = 0
		}
		if idx > n {
			idx = n
		}
		return idx
	}

	rStart := 0
	if start != 0 {
		rStart = resolve(start)
	}
	rStop := n
	if stop != 0 {
		rStop = resolve(stop)
	}
	if rStop < rStart {
		// Open question in spec.md §9: matchStart > effective stop.
		// Treat as an empty slice rather than guessing at reordering.
		rStop = rStart
	}

	pre = segs[:rStart]
	window = segs[rStart:rStop]
	suf = segs[rStop:]
	return pre, window, suf
}

// Unslice is the inverse of Slice: joins prefix, (possibly rewritten)
// window, and suffix back into a normalized path.
func Unslice(pre, window, suf []string) string {
	all := make([]string, 0, len(pre)+len(window)+len(suf))
	all = append(all, pre...)
	all = append(all, window...)
	all = append(all, suf...)
	return Join(all)
}

// WindowString joins the window segments with '/' without renormalizing,
// which is what regex matching operates against (the raw slice, not the
// full path).
func WindowString(window []string) string {
	return strings.Join(window, "/")
}

// Parent and Base split a normalized path into its parent path and last
// segment, mirroring companion-path computation in internal/meta. The
// root path has empty parent and empty base.
func Parent(p string) string {
	segs := Segments(p)
	if len(segs) <= 1 {
		return Root
	}
	return Join(segs[:len(segs)-1])
}

func Base(p string) string {
	segs := Segments(p)
	if len(segs) == 0 {
		return ""
	}
	return segs[len(segs)-1]
}
