package jsonvalidate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Materials-Data-Science-and-Informatics/dirschema/internal/adapter"
)

func TestValidateSchema_Valid(t *testing.T) {
	v := New()
	schema := map[string]any{"type": "object", "required": []any{"name"}}
	errs, err := v.ValidateSchema(schema, map[string]any{"name": "x"})
	require.NoError(t, err)
	assert.Empty(t, errs)
}

func TestValidateSchema_Invalid(t *testing.T) {
	v := New()
	schema := map[string]any{"type": "object", "required": []any{"name"}}
	errs, err := v.ValidateSchema(schema, map[string]any{})
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

type fakeJSONHandler struct{}

func (fakeJSONHandler) ForJSON() bool { return true }
func (fakeJSONHandler) ValidateJSON(data any, arg string) (Errors, error) {
	m, _ := data.(map[string]any)
	if m["ok"] != true {
		return Errors{"": {"not ok: " + arg}}, nil
	}
	return nil, nil
}
func (fakeJSONHandler) ValidateRaw(data []byte, arg string) (Errors, error) {
	return nil, nil
}

func TestInvokePlugin_JSON(t *testing.T) {
	ad, fsys := adapter.NewMemory()
	f, err := fsys.Create("data.json")
	require.NoError(t, err)
	_, err = f.Write([]byte(`{"ok": false}`))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	v := New()
	v.RegisterPlugin("mycheck", fakeJSONHandler{})

	errs, err := v.InvokePlugin("mycheck", "arg1", "data.json", ad)
	require.NoError(t, err)
	require.Contains(t, errs, "")
	assert.Contains(t, errs[""][0], "arg1")
}

func TestInvokePlugin_UnknownName(t *testing.T) {
	ad, _ := adapter.NewMemory()
	v := New()
	_, err := v.InvokePlugin("nope", "", "x", ad)
	require.Error(t, err)
}
