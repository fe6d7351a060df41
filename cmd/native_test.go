// Copyright © 2024 The ELPS authors

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunNative(t *testing.T) {
	tests := []struct {
		name string
		opts nativeOptions
		args []string
		code int
		want string
	}{
		{
			name: "all native",
			args: []string{"princ", "STRCAT"},
			code: exitOK,
			want: "princ: native\nSTRCAT: native\n",
		},
		{
			name: "user-defined with suggestion",
			args: []string{"princ", "strcta", "my-helper"},
			code: exitFindings,
			want: "princ: native\nstrcta: user-defined (did you mean strcat?)\nmy-helper: user-defined\n",
		},
		{
			name: "operators",
			args: []string{"+", "/="},
			code: exitOK,
			want: "+: native\n/=: native\n",
		},
		{
			name: "list",
			opts: nativeOptions{list: true},
			code: exitOK,
			want: "car\ndefun\nforeach\nlambda\nprinc\nset\nsetq\nstrcat\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newConfig([]Option{WithNatives(testNatives), WithResources(testResources)})
			var out bytes.Buffer
			code := runNative(cfg, &tt.opts, tt.args, &out)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRunNative_Doc(t *testing.T) {
	cfg := newConfig([]Option{WithNatives(testNatives), WithResources(testResources)})
	var out bytes.Buffer
	code := runNative(cfg, &nativeOptions{doc: true}, []string{"PRINC", "car"}, &out)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "PRINC: native\n  (princ [expr [file-desc]])\n    Prints an expression to the command line.\ncar: native\n", out.String())
}

func TestNativeCommand_RequiresNames(t *testing.T) {
	cmd := NativeCommand(WithNatives(testNatives))
	cmd.SetArgs(nil)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}
