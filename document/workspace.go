// Copyright © 2024 The ELPS authors

package document

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/sync/errgroup"
)

// DefaultInclude are the workspace patterns used when none are configured.
var DefaultInclude = []string{"**/*.lsp", "**/*.mnl"}

// Glob returns the files under root matching any of patterns, as sorted
// paths joined to root.  Patterns use doublestar syntax and are relative to
// root.
func Glob(root string, patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		patterns = DefaultInclude
	}
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid workspace pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			p := filepath.Join(root, filepath.FromSlash(m))
			if !seen[p] {
				seen[p] = true
				files = append(files, p)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// MatchAny reports whether the slash-separated relative path rel matches
// one of patterns.
func MatchAny(patterns []string, rel string) bool {
	if len(patterns) == 0 {
		patterns = DefaultInclude
	}
	rel = path.Clean(filepath.ToSlash(rel))
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// LoadWorkspace reads every file under root matching patterns into store
// and returns the number of documents stored.  Files are read in parallel.
// Documents an editor has open are left as they are.
func LoadWorkspace(ctx context.Context, store *Store, root string, patterns []string) (int, error) {
	files, err := Glob(root, patterns)
	if err != nil {
		return 0, err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	stored := make([]bool, len(files))
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if SelectorFor(file) == "" {
				log.Debugf("skipping %q: %v", file, ErrUnsupportedLanguage)
				return nil
			}
			b, err := os.ReadFile(file) //#nosec G304
			if err != nil {
				log.Warningf("workspace: %v", err)
				return nil
			}
			stored[i] = store.Put(file, string(b))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	n := 0
	for _, ok := range stored {
		if ok {
			n++
		}
	}
	log.Infof("loaded %d workspace documents from %s", n, root)
	return n, nil
}
