package adapter

import (
	"encoding/json"
	"io"
	"os"
	"sort"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/pathutil"
)

// billyAdapter implements Adapter over any billy.Filesystem, so the real
// filesystem (osfs) and an in-memory fixture (memfs) share one
// implementation instead of two hand-rolled directory walks. This mirrors
// how the teacher's nfsmount package treats billy.Filesystem as the
// single abstraction boundary for tree-shaped storage.
type billyAdapter struct {
	fs    billy.Filesystem
	paths []string
}

// NewFilesystem returns an Adapter rooted at a real directory on disk.
func NewFilesystem(root string) Adapter {
	return &billyAdapter{fs: osfs.New(root)}
}

// NewMemory returns an empty in-memory Adapter, useful for tests. Callers
// populate it through the billy.Filesystem returned alongside it.
func NewMemory() (Adapter, billy.Filesystem) {
	fsys := memfs.New()
	return &billyAdapter{fs: fsys}, fsys
}

func toBilly(p string) string {
	if p == pathutil.Root {
		return "."
	}
	return p
}

func (a *billyAdapter) Enumerate() ([]string, error) {
	if a.paths != nil {
		return a.paths, nil
	}
	paths := []string{pathutil.Root}
	if err := a.walk(".", &paths); err != nil {
		return nil, err
	}
	sort.Strings(paths)
	a.paths = paths
	return paths, nil
}

func (a *billyAdapter) walk(dir string, out *[]string) error {
	entries, err := a.fs.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		child := e.Name()
		if dir != "." {
			child = dir + "/" + e.Name()
		}
		norm := pathutil.Normalize(child)
		*out = append(*out, norm)
		if e.IsDir() {
			if err := a.walk(child, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func (a *billyAdapter) stat(path string) (os.FileInfo, error) {
	return a.fs.Stat(toBilly(path))
}

func (a *billyAdapter) IsFile(path string) bool {
	if path == pathutil.Root {
		return false
	}
	info, err := a.stat(path)
	return err == nil && !info.IsDir()
}

func (a *billyAdapter) IsDir(path string) bool {
	if path == pathutil.Root {
		return true
	}
	info, err := a.stat(path)
	return err == nil && info.IsDir()
}

func (a *billyAdapter) Exists(path string) bool {
	if path == pathutil.Root {
		return true
	}
	_, err := a.stat(path)
	return err == nil
}

func (a *billyAdapter) LoadRaw(path string) ([]byte, error) {
	f, err := a.fs.Open(toBilly(path))
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return data, nil
}

func (a *billyAdapter) LoadJSON(path string) (any, error) {
	data, err := a.LoadRaw(path)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return v, nil
}
