// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Methuselah96/auto-lisp-parser/document"
	"github.com/bmatcuk/doublestar/v4"
)

// expandArgs expands arguments, resolving patterns ending with "/..." to all
// files below the directory that match the workspace include patterns.
// Arguments containing glob metacharacters are expanded with doublestar.
// Other arguments pass through unchanged.  Paths matching one of excludes
// are dropped.
func expandArgs(args []string, include, excludes []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		switch {
		case isRecursive(arg):
			dir := strings.TrimSuffix(arg, "...")
			dir = strings.TrimRight(dir, "/")
			if dir == "" {
				dir = "."
			}
			files, err := document.Glob(dir, include)
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			out = append(out, files...)
		case strings.ContainsAny(arg, "*?[{"):
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("expanding %s: %w", arg, err)
			}
			if len(matches) == 0 {
				return nil, fmt.Errorf("%s: no files match", arg)
			}
			out = append(out, matches...)
		default:
			out = append(out, arg)
		}
	}
	return filterExcludes(out, excludes), nil
}

func isRecursive(arg string) bool {
	return arg == "..." || strings.HasSuffix(arg, "/...") ||
		strings.HasSuffix(arg, string(os.PathSeparator)+"...")
}

// filterExcludes removes paths that match any of the exclude patterns.
func filterExcludes(paths, excludes []string) []string {
	if len(excludes) == 0 {
		return paths
	}
	var out []string
	for _, p := range paths {
		if !matchesAny(p, excludes) {
			out = append(out, p)
		}
	}
	return out
}

// matchesAny reports whether path matches one of patterns.  A pattern may
// match the whole path, its base name, or any single path component.
func matchesAny(path string, patterns []string) bool {
	slashed := filepath.ToSlash(path)
	components := splitPath(path)
	for _, pattern := range patterns {
		if ok, _ := doublestar.PathMatch(pattern, path); ok {
			return true
		}
		if ok, _ := doublestar.Match(filepath.ToSlash(pattern), slashed); ok {
			return true
		}
		for _, c := range components {
			if ok, _ := doublestar.Match(pattern, c); ok {
				return true
			}
		}
	}
	return false
}

// splitPath returns the components of path, base name first.
func splitPath(path string) []string {
	var parts []string
	path = filepath.Clean(path)
	for {
		dir, base := filepath.Split(path)
		if base != "" {
			parts = append(parts, base)
		}
		dir = strings.TrimRight(dir, string(os.PathSeparator))
		if dir == "" || dir == path {
			break
		}
		path = dir
	}
	return parts
}
