package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryFixture(t *testing.T, files map[string]string) Adapter {
	t.Helper()
	ad, fsys := NewMemory()
	for p, content := range files {
		require.NoError(t, fsys.MkdirAll(parentDir(p), 0o755))
		f, err := fsys.Create(p)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	return ad
}

func parentDir(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "."
}

func TestBillyAdapter_Enumerate(t *testing.T) {
	ad := newMemoryFixture(t, map[string]string{
		"a.txt":        "a",
		"sub/b.txt":    "b",
		"sub/c/d.json": `{"x":1}`,
	})

	paths, err := ad.Enumerate()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"", "a.txt", "sub", "sub/b.txt", "sub/c", "sub/c/d.json"}, paths)
}

func TestBillyAdapter_IsFileIsDirExists(t *testing.T) {
	ad := newMemoryFixture(t, map[string]string{
		"a.txt":     "a",
		"sub/b.txt": "b",
	})

	assert.True(t, ad.IsDir(""))
	assert.False(t, ad.IsFile(""))
	assert.True(t, ad.Exists(""))

	assert.True(t, ad.IsFile("a.txt"))
	assert.False(t, ad.IsDir("a.txt"))
	assert.True(t, ad.Exists("a.txt"))

	assert.True(t, ad.IsDir("sub"))
	assert.False(t, ad.IsFile("sub"))

	assert.False(t, ad.Exists("missing.txt"))
	assert.False(t, ad.IsFile("missing.txt"))
	assert.False(t, ad.IsDir("missing.txt"))
}

func TestBillyAdapter_LoadRawAndLoadJSON(t *testing.T) {
	ad := newMemoryFixture(t, map[string]string{
		"data.json": `{"a":1,"b":"two"}`,
		"plain.txt": "hello",
	})

	raw, err := ad.LoadRaw("plain.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	v, err := ad.LoadJSON("data.json")
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, "two", m["b"])
}

func TestBillyAdapter_LoadRaw_MissingPath(t *testing.T) {
	ad := newMemoryFixture(t, map[string]string{"a.txt": "a"})

	_, err := ad.LoadRaw("missing.txt")
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "missing.txt", loadErr.Path)
}

func TestBillyAdapter_LoadJSON_Unparsable(t *testing.T) {
	ad := newMemoryFixture(t, map[string]string{"bad.json": "not json"})

	_, err := ad.LoadJSON("bad.json")
	require.Error(t, err)
	var loadErr *LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestNewFilesystem_RealDisk(t *testing.T) {
	dir := t.TempDir()
	ad := NewFilesystem(dir)

	paths, err := ad.Enumerate()
	require.NoError(t, err)
	assert.Equal(t, []string{""}, paths)
	assert.True(t, ad.IsDir(""))
}
