package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kerrors "github.com/PolarWolf314/kaitiaki/internal/errors"

	"github.com/bmatcuk/doublestar/v4"
)

// FileFilter selects which files a pattern may resolve to. A nil filter
// accepts every regular file.
type FileFilter func(path string) bool

// ResolveFiles expands user-provided paths, directories and globs (with **
// support) into a deduplicated list of absolute file paths. Relative
// patterns are resolved against base.
//
// Returns ErrFileNotProvided if patterns is empty, ErrFileNotFound for a
// literal path that does not exist, and ErrNoFilesFound if nothing matched.
func ResolveFiles(patterns []string, base string, filter FileFilter) ([]string, error) {
	if len(patterns) == 0 {
		return nil, kerrors.ErrFileNotProvided
	}

	var files []string
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		resolved, err := resolvePattern(pattern, base, filter)
		if err != nil {
			return nil, err
		}
		for _, f := range resolved {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}

	if len(files) == 0 {
		return nil, kerrors.ErrNoFilesFound
	}
	return files, nil
}

func resolvePattern(pattern, base string, filter FileFilter) ([]string, error) {
	absPattern := pattern
	if !filepath.IsAbs(pattern) {
		absPattern = filepath.Join(base, pattern)
	}

	if IsDir(absPattern) {
		return findFilesInDir(absPattern, filter)
	}

	if strings.ContainsAny(pattern, "*?[{") {
		return expandGlob(absPattern, pattern, filter)
	}

	if _, err := os.Stat(absPattern); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrFileNotFound, pattern)
	}
	// An explicitly named file is taken as-is, whatever the filter says.
	return []string{absPattern}, nil
}

func expandGlob(absPattern, pattern string, filter FileFilter) ([]string, error) {
	matches, err := doublestar.FilepathGlob(absPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}

	// Wildcards do not descend into hidden directories, matching the
	// directory walk. Hidden directories named literally in the pattern
	// are part of root and stay reachable.
	root, _ := doublestar.SplitPattern(filepath.ToSlash(absPattern))
	root = filepath.FromSlash(root)

	var filtered []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		if inHiddenDir(root, m) {
			continue
		}
		if filter == nil || filter(m) {
			filtered = append(filtered, m)
		}
	}
	return filtered, nil
}

// inHiddenDir reports whether path sits in a dot-prefixed directory below root.
func inHiddenDir(root, path string) bool {
	rel, err := filepath.Rel(root, filepath.Dir(path))
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(rel, string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != ".." {
			return true
		}
	}
	return false
}

func findFilesInDir(dir string, filter FileFilter) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if filter == nil || filter(path) {
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

// HasExtension returns a FileFilter accepting files ending in any of exts.
func HasExtension(exts ...string) FileFilter {
	return func(path string) bool {
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) {
				return true
			}
		}
		return false
	}
}

// Not inverts a FileFilter.
func Not(f FileFilter) FileFilter {
	return func(path string) bool {
		return !f(path)
	}
}
