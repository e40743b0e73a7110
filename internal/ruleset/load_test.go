package ruleset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/api"
	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/resolve"
)

func TestParseDocument_TrivialBool(t *testing.T) {
	node, warnings, err := ParseDocument([]byte(`true`))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	v, ok := node.IsTrivial()
	require.True(t, ok)
	assert.True(t, v)
}

func TestParseDocument_FullRule(t *testing.T) {
	doc := `
match: "data/.+\\.csv"
type: file
validMeta:
  type: object
  required: [unit]
next:
  type: file
`
	node, warnings, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.NotNil(t, node.Rule)
	require.NotNil(t, node.Rule.Match)
	assert.Equal(t, `data/.+\.csv`, *node.Rule.Match)
	require.NotNil(t, node.Rule.Type)
	assert.Equal(t, api.TypeFile, *node.Rule.Type)
	require.NotNil(t, node.Rule.ValidMeta)
	assert.Equal(t, "object", node.Rule.ValidMeta.Inline["type"])
	require.NotNil(t, node.Rule.Next)
}

func TestParseDocument_RewriteWithoutNextWarns(t *testing.T) {
	doc := `
match: "(.*)\\.csv"
rewrite: "$1.meta"
`
	_, warnings, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "rewrite")
}

func TestParseDocument_ElseWithoutIfRejected(t *testing.T) {
	doc := `
else: true
`
	_, _, err := ParseDocument([]byte(doc))
	require.Error(t, err)
}

func TestParseDocument_AmbiguousSuccessorRejected(t *testing.T) {
	doc := `
then: true
next: true
`
	_, _, err := ParseDocument([]byte(doc))
	require.Error(t, err)
}

func TestParseDocument_LegacyThenBecomesNext(t *testing.T) {
	doc := `
then:
  type: file
`
	node, _, err := ParseDocument([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, node.Rule.Next)
	assert.Equal(t, "then", node.Rule.SuccessorKey)
}

func TestParseDocument_UnrecognizedKey(t *testing.T) {
	_, _, err := ParseDocument([]byte(`bogusKey: 1`))
	require.Error(t, err)
}

func TestParseDocumentWithRefs_ResolvesExternalRef(t *testing.T) {
	doc := `
valid:
  $ref: "cwd://common.json"
`
	load := func(uri string) (any, error) {
		return map[string]any{"type": "object"}, nil
	}
	node, _, err := ParseDocumentWithRefs([]byte(doc), &resolve.Resolver{WorkingDir: "/work"}, load)
	require.NoError(t, err)
	require.NotNil(t, node.Rule.Valid)
	assert.Equal(t, "object", node.Rule.Valid.Inline["type"])
}
