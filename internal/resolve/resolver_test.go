package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURI_Schemes(t *testing.T) {
	r := &Resolver{LocalBaseDir: "/data/schemas", WorkingDir: "/work"}

	cases := []struct {
		name    string
		raw     string
		wantURI string
		wantErr bool
	}{
		{"http", "http://example.com/s.json", "http://example.com/s.json", false},
		{"https", "https://example.com/s.json", "https://example.com/s.json", false},
		{"local", "local://a/b.json", "file:///data/schemas/a/b.json", false},
		{"cwd", "cwd://a/b.json", "file:///work/a/b.json", false},
		{"absolute bare path", "/abs/b.json", "file:///abs/b.json", false},
		{"bare relative defaults to cwd", "a/b.json", "file:///work/a/b.json", false},
		{"unknown scheme", "weird://x", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := r.ResolveURI(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, KindURI, res.Kind)
			assert.Equal(t, tc.wantURI, res.URI)
		})
	}
}

func TestResolveURI_RelativePrefixOverride(t *testing.T) {
	r := &Resolver{LocalBaseDir: "/data", RelativePrefix: "local://"}
	res, err := r.ResolveURI("b.json")
	require.NoError(t, err)
	assert.Equal(t, "file:///data/b.json", res.URI)
}

func TestResolveURI_Plugin(t *testing.T) {
	r := &Resolver{}
	res, err := r.ResolveURI("v#checksum://sha256")
	require.NoError(t, err)
	require.Equal(t, KindPlugin, res.Kind)
	assert.Equal(t, "checksum", res.Plugin.Name)
	assert.Equal(t, "sha256", res.Plugin.Arg)
}
