package descriptor

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/teranos/recordgen/errors"
	"github.com/teranos/recordgen/logger"
)

// Expand resolves descriptor patterns relative to root. Patterns may use
// doublestar globs ("schemas/**/*.yaml") and keep an "openapi:" prefix. A
// literal path that does not exist is an error; a glob without matches is
// only logged.
func Expand(root string, patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range patterns {
		prefix := ""
		if rest, ok := strings.CutPrefix(pattern, OpenAPIPrefix); ok {
			prefix, pattern = OpenAPIPrefix, rest
		}
		full := pattern
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, pattern)
		}

		matches, err := doublestar.FilepathGlob(full, doublestar.WithFilesOnly())
		if err != nil {
			return nil, errors.Wrapf(err, "invalid descriptor pattern %q", pattern)
		}
		if len(matches) == 0 {
			if !hasMeta(pattern) {
				return nil, errors.Newf("descriptor %s not found", full)
			}
			logger.Warnw("Descriptor pattern matched no files", logger.FieldFile, full)
			continue
		}
		sort.Strings(matches)
		for _, m := range matches {
			key := prefix + m
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, key)
		}
	}
	return out, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}
