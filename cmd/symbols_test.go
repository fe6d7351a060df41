// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSymbols(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.lsp": "(setq total 0)\n(defun add (x / tmp) (setq tmp x total (+ total tmp)))\n",
		"b.lsp": "(princ total)\n",
	})
	a := filepath.Join(dir, "a.lsp")
	b := filepath.Join(dir, "b.lsp")

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		err := runSymbols(context.Background(), &symbolsOptions{name: "tmp"}, []string{a}, &out)
		require.NoError(t, err)
		assert.Equal(t, "symbol occurrences (3)\n"+
			"- tmp "+a+":2:17 local to add [declaration]\n"+
			"- tmp "+a+":2:28 local to add [assigned]\n"+
			"- tmp "+a+":2:49 local to add\n", out.String())
	})

	t.Run("json across files", func(t *testing.T) {
		var out bytes.Buffer
		err := runSymbols(context.Background(), &symbolsOptions{name: "TOTAL", json: true}, []string{a, b}, &out)
		require.NoError(t, err)
		var records []symbolRecord
		require.NoError(t, json.Unmarshal(out.Bytes(), &records))
		assert.Equal(t, []symbolRecord{
			{Name: "total", File: a, Line: 1, Col: 7, Binding: "global", Assigned: true},
			{Name: "total", File: a, Line: 2, Col: 34, Binding: "global", Assigned: true},
			{Name: "total", File: a, Line: 2, Col: 43, Binding: "global"},
			{Name: "total", File: b, Line: 1, Col: 8, Binding: "global"},
		}, records)
	})

	t.Run("only listed files", func(t *testing.T) {
		var out bytes.Buffer
		err := runSymbols(context.Background(), &symbolsOptions{name: "total", workspace: dir}, []string{b}, &out)
		require.NoError(t, err)
		assert.Equal(t, "symbol occurrences (1)\n- total "+b+":1:8 global\n", out.String())
	})

	t.Run("unknown name", func(t *testing.T) {
		var out bytes.Buffer
		err := runSymbols(context.Background(), &symbolsOptions{name: "nothing"}, []string{a}, &out)
		assert.EqualError(t, err, `symbol "nothing" not found`)
	})

	t.Run("all names", func(t *testing.T) {
		var out bytes.Buffer
		err := runSymbols(context.Background(), &symbolsOptions{json: true}, []string{b}, &out)
		require.NoError(t, err)
		var records []symbolRecord
		require.NoError(t, json.Unmarshal(out.Bytes(), &records))
		names := make([]string, len(records))
		for i, r := range records {
			names[i] = r.Name
		}
		assert.Equal(t, []string{"princ", "total"}, names)
	})
}
