package eval

import (
	"testing"

	billy "github.com/go-git/go-billy/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/adapter"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/jsonvalidate"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/meta"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/resolve"
)

func newFixture(t *testing.T, files map[string]string) (*Config, billy.Filesystem) {
	t.Helper()
	ad, fsys := adapter.NewMemory()
	for p, content := range files {
		require.NoError(t, fsys.MkdirAll(parentDir(p), 0o755))
		f, err := fsys.Create(p)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}
	conv, err := meta.New(api.DefaultMetaConvention())
	require.NoError(t, err)
	cfg := &Config{
		Adapter:   ad,
		Meta:      conv,
		Resolver:  &resolve.Resolver{},
		Validator: jsonvalidate.New(),
	}
	return cfg, fsys
}

func parentDir(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return "."
}

func strp(s string) *string              { return &s }
func typep(k api.TypeKind) *api.TypeKind { return &k }

func TestEvaluate_TypeGating(t *testing.T) {
	cfg, _ := newFixture(t, map[string]string{
		"img/a.jpg":           "binary",
		"img/a.jpg_meta.json": `{"k": "v"}`,
		"img/b.txt":           "text",
	})
	fileType := api.TypeFile
	root := &api.Node{Rule: &api.Rule{
		Match:     strp("img/[^/]+"),
		Type:      &fileType,
		ValidMeta: &api.SchemaOrRef{Inline: map[string]any{"type": "object"}},
	}}

	okDir, _ := Evaluate(cfg, "img", root)
	assert.True(t, okDir, "path not matching 'match' is an applicability-miss, not a failure")

	okA, errsA := Evaluate(cfg, "img/a.jpg", root)
	assert.True(t, okA, "a.jpg has its companion and should validate: %v", errsA)

	okB, errsB := Evaluate(cfg, "img/b.txt", root)
	require.False(t, okB)
	require.Contains(t, errsB, "validMeta")
	assert.Contains(t, errsB["validMeta"].Message, "img/b.txt_meta.json")
}

func TestEvaluate_ShortCircuitWithRewrite(t *testing.T) {
	cfg, _ := newFixture(t, map[string]string{
		"data/x.csv":      "1,2,3",
		"data/x.csv.meta": "meta",
	})
	root := &api.Node{Rule: &api.Rule{
		Match:   strp(`(.*)\.csv`),
		Rewrite: strp(`$1.csv.meta`),
		Next:    &api.Node{Rule: &api.Rule{Type: typep(api.TypeFile)}},
	}}

	ok, errs := Evaluate(cfg, "data/x.csv", root)
	assert.True(t, ok, "expected success, got errors: %v", errs)
	assert.Empty(t, errs)
}

func TestEvaluate_OneOfExactness(t *testing.T) {
	root := &api.Node{Rule: &api.Rule{
		OneOf: []api.Node{
			{Rule: &api.Rule{Type: typep(api.TypeFile)}},
			{Rule: &api.Rule{Type: typep(api.TypeDir)}},
		},
	}}

	cfgFile, _ := newFixture(t, map[string]string{"f": "x"})
	ok, _ := Evaluate(cfgFile, "f", root)
	assert.True(t, ok)

	cfgMissing, _ := newFixture(t, map[string]string{})
	ok, errs := Evaluate(cfgMissing, "missing", root)
	require.False(t, ok)
	require.Contains(t, errs, "oneOf")
	assert.Contains(t, errs["oneOf"].Message, "exactly 1")
}

func TestEvaluate_SliceWindow(t *testing.T) {
	cfg, _ := newFixture(t, map[string]string{"a/b/c/d": "x"})
	start, stop := int32(1), int32(-1)
	root := &api.Node{Rule: &api.Rule{
		MatchStart: &start,
		MatchStop:  &stop,
		Match:      strp("b/c"),
	}}

	ok, errs := Evaluate(cfg, "a/b/c/d", root)
	assert.True(t, ok, "expected success, got errors: %v", errs)
}

func TestEvaluate_IfThenElse(t *testing.T) {
	cfg, fsys := newFixture(t, map[string]string{"adir/placeholder": "x"})
	_ = fsys

	root := &api.Node{Rule: &api.Rule{
		If:   &api.Node{Rule: &api.Rule{Type: typep(api.TypeFile)}},
		Then: &api.Node{Rule: &api.Rule{ValidMeta: &api.SchemaOrRef{Inline: map[string]any{"type": "object"}}}},
		Else: api.BoolNode(true),
	}}

	ok, errs := Evaluate(cfg, "adir", root)
	assert.True(t, ok, "directory target should hit 'else: true' with no error from 'if' failing: %v", errs)
}

func TestEvaluate_DescriptionOverride(t *testing.T) {
	cfg, _ := newFixture(t, map[string]string{"a.jpg": "binary"})
	desc := "jpg needs metadata"
	root := &api.Node{Rule: &api.Rule{
		AllOf: []api.Node{
			{Rule: &api.Rule{Type: typep(api.TypeFile)}},
			{Rule: &api.Rule{ValidMeta: &api.SchemaOrRef{Inline: map[string]any{"type": "object"}}}},
		},
		Description: &desc,
	}}

	ok, errs := Evaluate(cfg, "a.jpg", root)
	require.False(t, ok)
	require.Len(t, errs, 1)
	finding, ok2 := errs[""]
	require.True(t, ok2, "description override reports at the node's own location: %v", errs)
	assert.Equal(t, desc, finding.Message)
}
