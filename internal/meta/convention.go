// Package meta implements the MetaConvention component of spec.md §4.2:
// mapping a data path to its companion metadata path, and recognizing
// companion paths so the Driver can exclude them from validation.
package meta

import (
	"fmt"
	"strings"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/pathutil"
)

// Convention wraps api.MetaConvention with the companion-path operations.
type Convention struct {
	api.MetaConvention
}

// New validates and wraps a MetaConvention. Returns an error if neither
// FilePrefix nor FileSuffix is set (spec.md §3 invariant).
func New(c api.MetaConvention) (*Convention, error) {
	if c.FilePrefix == "" && c.FileSuffix == "" {
		return nil, fmt.Errorf("meta: at least one of filePrefix or fileSuffix must be set")
	}
	return &Convention{MetaConvention: c}, nil
}

// CompanionFor computes the metadata path for a data path, per spec.md
// §4.2. Grounded on original_source/src/dirschema/core.py's meta_for.
func (c *Convention) CompanionFor(path string, isDir bool) string {
	segs := pathutil.Segments(path)
	if path == pathutil.Root {
		segs = nil
	}

	var out []string
	if c.PathPrefix != "" {
		out = append(out, c.PathPrefix)
	}

	var name string
	if len(segs) > 0 {
		name = segs[len(segs)-1]
		out = append(out, segs[:len(segs)-1]...)
	}

	if isDir {
		if name != "" {
			out = append(out, name)
		}
		if c.PathSuffix != "" {
			out = append(out, c.PathSuffix)
		}
		out = append(out, c.FilePrefix+c.FileSuffix)
	} else {
		if c.PathSuffix != "" {
			out = append(out, c.PathSuffix)
		}
		out = append(out, c.FilePrefix+name+c.FileSuffix)
	}

	return pathutil.Join(out)
}

// IsCompanion reports whether path matches the structural shape a
// companion metadata path would have under this convention: last segment
// has the configured prefix/suffix, and (if configured) the path/dir
// prefix and suffix segments are present at the expected positions.
// Grounded on original_source/src/dirschema/core.py's is_meta, which
// checks structural position rather than re-deriving every companion.
func (c *Convention) IsCompanion(path string) bool {
	if path == pathutil.Root {
		return false
	}
	parts := pathutil.Segments(path)
	if len(parts) == 0 {
		return false
	}

	last := parts[len(parts)-1]
	if c.FilePrefix != "" && !strings.HasPrefix(last, c.FilePrefix) {
		return false
	}
	if c.FileSuffix != "" && !strings.HasSuffix(last, c.FileSuffix) {
		return false
	}

	pieces := 0
	if c.PathPrefix != "" {
		pieces++
	}
	if c.PathSuffix != "" {
		pieces++
	}
	if len(parts) < 1+pieces {
		return false
	}

	okPrefix := c.PathPrefix == "" || parts[0] == c.PathPrefix
	okSuffix := c.PathSuffix == "" || parts[len(parts)-2] == c.PathSuffix
	return okPrefix && okSuffix
}
