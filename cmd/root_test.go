// Copyright © 2024 The ELPS authors

package cmd

import (
	"testing"

	"github.com/Methuselah96/auto-lisp-parser/diagnostic"
	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	assert.Equal(t, document.DefaultInclude, v.GetStringSlice(keyInclude))
	assert.Empty(t, v.GetStringSlice(keyChecks))
	assert.Equal(t, 0, v.GetInt(keyVerbosity))
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{"list", []string{"global-leak", "setq-pairs"}, []string{"global-leak", "setq-pairs"}},
		{"comma separated", "global-leak, setq-pairs,,", []string{"global-leak", "setq-pairs"}},
		{"mixed", []string{"a,b", " c "}, []string{"a", "b", "c"}},
		{"empty", "", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const key = "test.list"
			viper.Set(key, tt.value)
			defer viper.Set(key, nil)
			assert.Equal(t, tt.want, stringList(key))
		})
	}
}

func TestColorMode(t *testing.T) {
	defer func(orig string) { colorFlag = orig }(colorFlag)
	tests := map[string]diagnostic.ColorMode{
		"always": diagnostic.ColorAlways,
		"never":  diagnostic.ColorNever,
		"auto":   diagnostic.ColorAuto,
		"":       diagnostic.ColorAuto,
	}
	for flag, want := range tests {
		colorFlag = flag
		assert.Equal(t, want, colorMode(), "flag %q", flag)
	}
}
