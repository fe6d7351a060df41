// Copyright © 2024 The ELPS authors

package natives

import (
	"sort"

	"github.com/Methuselah96/auto-lisp-parser/ast"
	"github.com/hbollon/go-edlib"
)

// MinSimilarity is the Jaro-Winkler similarity a native name must reach to
// be suggested.
const MinSimilarity = 0.9

// Suggest returns up to limit native names that closely resemble name, most
// similar first.  A name that is itself native has no suggestions.
func (c *Classifier) Suggest(name string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	name = ast.NormalizeName(name)
	if c.IsNative(name) {
		return nil
	}
	type candidate struct {
		name  string
		score float32
	}
	var cands []candidate
	consider := func(native string) {
		score, err := edlib.StringsSimilarity(name, native, edlib.JaroWinkler)
		if err != nil || score < MinSimilarity {
			return
		}
		cands = append(cands, candidate{native, score})
	}
	for _, native := range hotNames {
		consider(native)
	}
	for _, native := range c.names() {
		consider(native)
	}
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].name < cands[j].name
	})
	if len(cands) > limit {
		cands = cands[:limit]
	}
	out := make([]string, len(cands))
	for i := range cands {
		out[i] = cands[i].name
	}
	return out
}
