package docload

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"a":1}`), 0o644))

	data, err := ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))
}

func TestLoad_FileURI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\nb: two\n"), 0o644))

	v, err := Load("file://" + path)
	require.NoError(t, err)
	m := v.(map[string]any)
	assert.Equal(t, "two", m["b"])
}

func TestLoad_UnsupportedScheme(t *testing.T) {
	_, err := Load("ftp://example.com/x.json")
	assert.Error(t, err)
}
