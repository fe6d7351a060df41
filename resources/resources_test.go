// Copyright © 2024 The ELPS authors

package resources

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lf", "car\ncdr\n", []string{"car", "cdr"}},
		{"crlf", "car\r\ncdr\r\n\r\n", []string{"car", "cdr"}},
		{"blank lines", "\n\ncar\n  \ncdr", []string{"car", "cdr"}},
		{"cr", "car\rcdr", []string{"car", "cdr"}},
		{"empty", "", nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			kw, err := ParseKeywords(strings.NewReader(test.input))
			require.NoError(t, err)
			assert.Equal(t, test.want, kw)
		})
	}
}

func TestParseDataset(t *testing.T) {
	ds, err := ParseDataset(strings.NewReader(`{
		"functions": {"vla-get-name": {"id": "vla-get-name", "category": 2, "signature": "(vla-get-Name obj)"}},
		"ambiguousFunctions": {"vla-add": [{"id": "vla-add"}, {"id": "vla-add"}]},
		"enumerators": {"acred": "GUID-1"},
		"objects": {"line": {"id": "Line", "methods": ["vla-delete"]}},
		"dclTiles": {}, "dclAttributes": {}
	}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultYear, ds.Year)
	assert.Equal(t, []string{"acred", "vla-add", "vla-get-name"}, ds.Names())
	assert.Equal(t, CategoryPropertyGetter, ds.Functions["vla-get-name"].Category)
	assert.Len(t, ds.Signatures("vla-add"), 2)
	assert.Len(t, ds.Signatures("vla-get-name"), 1)
	assert.Nil(t, ds.Signatures("missing"))

	_, err = ParseDataset(strings.NewReader(`{"functions": [`))
	assert.Error(t, err)
}

func TestEmbedded(t *testing.T) {
	res := Load(Source{})
	require.NotNil(t, res.Dataset)
	assert.Equal(t, "2021", res.Dataset.Year)
	assert.Contains(t, res.Keywords, "setq")
	assert.Contains(t, res.Keywords, "vlax-curve-getArea")
	assert.NotContains(t, res.Keywords, "")
	names := res.Names()
	assert.Contains(t, names, "vla-get-name")
	assert.Contains(t, names, "vla-add")
	assert.Contains(t, names, "acred")
	assert.NotContains(t, names, "line", "object names are not callable")
	assert.NotEmpty(t, res.Dataset.DclTiles)
	assert.NotEmpty(t, res.Dataset.DclAttributes)
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	kw := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.WriteFile(kw, []byte("alpha\r\nbeta\r\n"), 0600))

	res := Load(Source{KeywordsPath: kw, DatasetPath: filepath.Join(dir, "missing.json")})
	assert.Equal(t, []string{"alpha", "beta"}, res.Keywords)
	assert.Nil(t, res.Dataset, "a missing dataset degrades to nothing")
	assert.Equal(t, []string{"alpha", "beta"}, res.Names())
}

func TestDefaultSource(t *testing.T) {
	t.Cleanup(func() { SetDefaultSource(Source{}) })
	dir := t.TempDir()
	kw := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.WriteFile(kw, []byte("only\n"), 0600))
	SetDefaultSource(Source{KeywordsPath: kw})
	res := Default()
	assert.Equal(t, []string{"only"}, res.Keywords)
	assert.NotNil(t, res.Dataset)
}
